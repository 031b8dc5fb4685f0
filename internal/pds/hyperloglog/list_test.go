package hyperloglog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListModeExactCountAndPromotion(t *testing.T) {
	s, err := New(4, HLL8)
	require.NoError(t, err)

	require.True(t, s.IsEmpty())

	require.NoError(t, s.UpdateString("only-item"))
	require.Equal(t, "LIST", s.GetCurMode())
	est, err := s.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, 1.0, est)

	// Fill LIST to capacity with distinct items; it must not promote yet.
	for i := 1; i < listCapacity; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}
	require.Equal(t, "LIST", s.GetCurMode())
	est, err = s.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, float64(listCapacity), est)

	// The next distinct insertion overflows LIST into SET.
	require.NoError(t, s.UpdateUint64(uint64(listCapacity+1000)))
	require.Equal(t, "SET", s.GetCurMode())
	est, err = s.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, float64(listCapacity+1), est)
}

func TestListModeDeduplicatesUpdates(t *testing.T) {
	s, err := New(10, HLL8)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpdateString("same-item"))
	}
	require.Equal(t, "LIST", s.GetCurMode())
	est, err := s.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, 1.0, est)
}
