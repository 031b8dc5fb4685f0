package hyperloglog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHll6GetSetAcrossByteBoundaries(t *testing.T) {
	numSlots := 20
	regs := make([]byte, hll6Bytes(numSlots))
	values := make([]int, numSlots)
	for i := range values {
		values[i] = (i*7 + 3) % 64
		hll6Set(regs, i, values[i])
	}
	for i, want := range values {
		require.Equal(t, want, hll6Get(regs, i), "slot %d", i)
	}
}

func TestHll6SetDoesNotDisturbNeighbors(t *testing.T) {
	regs := make([]byte, hll6Bytes(4))
	hll6Set(regs, 0, 0x3F)
	hll6Set(regs, 1, 0)
	hll6Set(regs, 2, 0x2A)
	hll6Set(regs, 3, 0)

	require.Equal(t, 0x3F, hll6Get(regs, 0))
	require.Equal(t, 0, hll6Get(regs, 1))
	require.Equal(t, 0x2A, hll6Get(regs, 2))
	require.Equal(t, 0, hll6Get(regs, 3))

	hll6Set(regs, 1, 0x15)
	require.Equal(t, 0x3F, hll6Get(regs, 0))
	require.Equal(t, 0x15, hll6Get(regs, 1))
	require.Equal(t, 0x2A, hll6Get(regs, 2))
}
