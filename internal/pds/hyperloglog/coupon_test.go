package hyperloglog

import "testing"

func TestMakeCouponNeverZero(t *testing.T) {
	for i := 0; i < 100000; i++ {
		h := hashItem([]byte{byte(i), byte(i >> 8), byte(i >> 16)})
		c := makeCoupon(h)
		if c == 0 {
			t.Fatalf("makeCoupon produced the empty sentinel for hash %x", h)
		}
		if v := couponValue(c); v < 1 || v > maxValue {
			t.Fatalf("coupon value %d out of [1,%d]", v, maxValue)
		}
	}
}

func TestCouponAddressValueRoundTrip(t *testing.T) {
	cases := []struct {
		address uint32
		value   int
	}{
		{0, 1},
		{1, 5},
		{addressMask, maxValue},
		{12345, 20},
	}
	for _, tc := range cases {
		c := (uint32(tc.value) << addressBits) | tc.address
		if got := couponAddress(c); got != int(tc.address) {
			t.Errorf("couponAddress(%x) = %d, want %d", c, got, tc.address)
		}
		if got := couponValue(c); got != tc.value {
			t.Errorf("couponValue(%x) = %d, want %d", c, got, tc.value)
		}
	}
}

func TestRegisterIndexMasksToLgConfigK(t *testing.T) {
	c := (uint32(3) << addressBits) | 0x3FFFFFF // all address bits set
	for lgK := minLgConfigK; lgK <= maxLgConfigK; lgK++ {
		idx := registerIndex(c, lgK)
		if idx != (1<<lgK)-1 {
			t.Errorf("registerIndex at lgK=%d = %d, want %d", lgK, idx, (1<<lgK)-1)
		}
	}
}
