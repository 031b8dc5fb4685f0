package hyperloglog

import (
	"math/bits"

	"github.com/twmb/murmur3"
)

// addressBits is the width of the address field packed into the low bits of
// a coupon. The remaining 38 bits of a 64-bit hash feed the value field.
const (
	addressBits = 26
	addressMask = (1 << addressBits) - 1
	valueBits   = 38
	maxValue    = 63
)

// hashSeed is fixed as part of the serialized-format contract: two sketches
// built from the same items must hash identically regardless of process or
// platform.
const hashSeed = 0x9e3779b97f4a7c15

// hashItem hashes arbitrary item bytes with a MurmurHash3-like 128-bit hash
// and keeps only the lower 64 bits, per spec. The hash function itself is
// treated as an external collaborator; this is the one call site that
// invokes it.
func hashItem(data []byte) uint64 {
	lo, _ := murmur3.SeedSum128(hashSeed, hashSeed, data)
	return lo
}

// makeCoupon packs a 64-bit hash into the 32-bit (address, value) coupon
// described in spec section 4.3.
//
// The low 26 bits of h become the address. The upper 38 bits determine the
// value: 1 plus the number of leading zero bits within that 38-bit field,
// clamped to maxValue. The all-zero 32-bit coupon can never arise from this
// encoding because value is always >= 1, which is why it is safe to use as
// the LIST/SET empty-slot sentinel (spec section 9, Open Question).
func makeCoupon(h uint64) uint32 {
	address := uint32(h) & addressMask
	rest := h >> addressBits // 38 significant bits, left-padded with 26 structural zeros
	lz := bits.LeadingZeros64(rest) - addressBits
	if lz < 0 {
		lz = 0
	}
	value := uint32(lz) + 1
	if value > maxValue {
		value = maxValue
	}
	return (value << addressBits) | address
}

// couponValue extracts the value field (1..63) from a coupon.
func couponValue(c uint32) int {
	return int(c >> addressBits)
}

// couponAddress extracts the full 26-bit address field from a coupon. This
// retains more entropy than any single lgConfigK's register index, which is
// what lets LIST/SET coupons be replayed unchanged into a merge destination
// whose lgConfigK differs from the source's: the address is only masked
// down when an HLL array consumes the coupon (spec section 4.10).
func couponAddress(c uint32) int {
	return int(c) & addressMask
}

// registerIndex computes the register index for a coupon at a given
// lgConfigK by masking its address down to lgConfigK bits.
func registerIndex(c uint32, lgConfigK int) int {
	return int(c) & ((1 << lgConfigK) - 1)
}
