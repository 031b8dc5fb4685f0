package hyperloglog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionDownsamplesToSmallerLgConfigK(t *testing.T) {
	a, err := New(12, HLL4)
	require.NoError(t, err)
	for i := 0; i < 20000; i++ {
		require.NoError(t, a.UpdateUint64(uint64(i)))
	}

	b, err := New(10, HLL8)
	require.NoError(t, err)
	for i := 15000; i < 35000; i++ {
		require.NoError(t, b.UpdateUint64(uint64(i)))
	}

	u, err := NewUnion(12, HLL8)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(b))

	result, err := u.GetResult(HLL8)
	require.NoError(t, err)

	require.Equal(t, 10, result.GetLgConfigK(), "union result must downsample to the smaller operand's lgConfigK")

	est, err := result.GetEstimate()
	require.NoError(t, err)
	require.InEpsilonf(t, 35000.0, est, 0.10, "union estimate %v not within tolerance of the true union size", est)
}

func TestUnionOfDisjointExactModesIsAdditive(t *testing.T) {
	a, err := New(14, HLL8)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, a.UpdateUint64(uint64(i)))
	}

	b, err := New(14, HLL8)
	require.NoError(t, err)
	for i := 100; i < 104; i++ {
		require.NoError(t, b.UpdateUint64(uint64(i)))
	}

	u, err := NewUnion(14, HLL8)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(b))

	result, err := u.GetResult(HLL8)
	require.NoError(t, err)
	require.Equal(t, "SET", result.GetCurMode())
	est, err := result.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, 9.0, est)
}

func TestUnionMarksResultOutOfOrder(t *testing.T) {
	a, err := New(10, HLL8)
	require.NoError(t, err)
	for i := 0; i < 5000; i++ {
		require.NoError(t, a.UpdateUint64(uint64(i)))
	}
	b, err := New(10, HLL8)
	require.NoError(t, err)
	for i := 4000; i < 9000; i++ {
		require.NoError(t, b.UpdateUint64(uint64(i)))
	}

	u, err := NewUnion(10, HLL8)
	require.NoError(t, err)
	require.NoError(t, u.Update(a))
	require.NoError(t, u.Update(b))

	h, ok := u.state.(*hllArray)
	require.True(t, ok)
	require.True(t, h.isOutOfOrder())
}
