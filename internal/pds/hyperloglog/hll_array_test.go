package hyperloglog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHllModeCardinalityWithinTolerance(t *testing.T) {
	s, err := New(12, HLL8)
	require.NoError(t, err)

	const n = 100000
	for i := 0; i < n; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	require.Equal(t, "HLL", s.GetCurMode())

	est, err := s.GetEstimate()
	require.NoError(t, err)
	require.InEpsilonf(t, float64(n), est, 0.02, "estimate %v not within 2%% of %d", est, n)
}

func TestHllBoundsBracketEstimate(t *testing.T) {
	s, err := New(10, HLL6)
	require.NoError(t, err)
	for i := 0; i < 5000; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	est, err := s.GetEstimate()
	require.NoError(t, err)
	for _, n := range []int{1, 2, 3} {
		lb, err := s.GetLowerBound(n)
		require.NoError(t, err)
		ub, err := s.GetUpperBound(n)
		require.NoError(t, err)
		require.LessOrEqual(t, lb, est)
		require.LessOrEqual(t, est, ub)
	}
}

func TestCompositeEstimateIndependentOfInsertionOrder(t *testing.T) {
	items := make([]uint64, 3000)
	for i := range items {
		items[i] = uint64(i)
	}

	build := func(order []uint64) float64 {
		s, err := New(11, HLL4)
		require.NoError(t, err)
		for _, v := range order {
			require.NoError(t, s.UpdateUint64(v))
		}
		est, err := s.GetCompositeEstimate()
		require.NoError(t, err)
		return est
	}

	forward := build(items)

	reversed := make([]uint64, len(items))
	for i, v := range items {
		reversed[len(items)-1-i] = v
	}
	backward := build(reversed)

	require.InDelta(t, forward, backward, 1e-9)
}

func TestHll4NibbleInvariantAfterUpdates(t *testing.T) {
	s, err := New(6, HLL4)
	require.NoError(t, err)
	for i := 0; i < 2000; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	h, ok := s.state.(*hllArray)
	require.True(t, ok)
	require.Equal(t, HLL4, h.cfg.tgtHllType)

	aux := s.AuxExceptions()
	numSlots := 1 << h.cfg.lgConfigK
	for i := 0; i < numSlots; i++ {
		nib := hll4Get(h.regs, i)
		if nib == hll4AuxToken {
			_, present := aux[i]
			require.True(t, present, "slot %d marked overflow but missing from aux table", i)
		} else {
			require.Equal(t, h.curMin+nib, h.hll4TrueValue(i))
		}
	}
}

func TestCopyAsPreservesRegistersAndEstimate(t *testing.T) {
	s, err := New(11, HLL8)
	require.NoError(t, err)
	for i := 0; i < 4000; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	wantEst, err := s.GetCompositeEstimate()
	require.NoError(t, err)

	for _, t2 := range []TgtHllType{HLL4, HLL6, HLL8} {
		cp, err := s.CopyAs(t2)
		require.NoError(t, err)
		gotEst, err := cp.GetCompositeEstimate()
		require.NoError(t, err)
		require.InEpsilon(t, wantEst, gotEst, 1e-9)

		s.ForEachRegister(func(idx, val int) {
			var got int
			cp.ForEachRegister(func(idx2, val2 int) {
				if idx2 == idx {
					got = val2
				}
			})
			if got == 0 && val != 0 {
				t.Fatalf("register %d: value %d missing after copyAs(%s)", idx, val, t2)
			}
		})
	}
}

func TestModeMonotonicityAndReset(t *testing.T) {
	s, err := New(4, HLL8)
	require.NoError(t, err)
	for i := 0; i < 13; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	require.Equal(t, "HLL", s.GetCurMode())

	require.NoError(t, s.Reset())
	require.Equal(t, "LIST", s.GetCurMode())
	require.True(t, s.IsEmpty())
}

func TestRoundTripCompactAndUpdatableBytes(t *testing.T) {
	sizes := []int{0, 1, 8, 9, 13, 5000}
	for _, n := range sizes {
		s, err := New(8, HLL8)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			require.NoError(t, s.UpdateUint64(uint64(i)))
		}

		compact, err := s.ToCompactBytes()
		require.NoError(t, err)
		rt, err := Heapify(compact)
		require.NoError(t, err)
		wantEst, err := s.GetCompositeEstimate()
		require.NoError(t, err)
		gotEst, err := rt.GetCompositeEstimate()
		require.NoError(t, err)
		require.InEpsilon(t, math.Max(wantEst, 1e-9), math.Max(gotEst, 1e-9), 1e-9)
		require.Equal(t, s.GetLgConfigK(), rt.GetLgConfigK())
		require.Equal(t, s.GetTgtHllType(), rt.GetTgtHllType())

		again, err := rt.ToCompactBytes()
		require.NoError(t, err)
		require.Equal(t, compact, again, "re-serialization must be byte-identical for n=%d", n)

		updatable, err := s.ToUpdatableBytes()
		require.NoError(t, err)
		rtU, err := Heapify(updatable)
		require.NoError(t, err)
		gotUEst, err := rtU.GetCompositeEstimate()
		require.NoError(t, err)
		require.InEpsilon(t, math.Max(wantEst, 1e-9), math.Max(gotUEst, 1e-9), 1e-9)
	}
}
