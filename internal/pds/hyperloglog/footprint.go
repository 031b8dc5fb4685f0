package hyperloglog

import "github.com/DmitriyVTitov/size"

// MemoryFootprint reports the sketch's approximate in-process memory
// footprint in bytes, including its current payload (coupon array, SET
// table, or HLL register array plus any auxiliary exceptions) but excluding
// a caller-owned off-heap buffer, which is not Go-managed memory. This is a
// diagnostic only; it is not part of the serialized-format contract.
func (s *Sketch) MemoryFootprint() int {
	return size.Of(s.state)
}
