package hyperloglog

import (
	"encoding/binary"
	"math"
)

func float64frombytes(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func le32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
