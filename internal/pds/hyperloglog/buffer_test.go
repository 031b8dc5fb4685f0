package hyperloglog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapBufferReadWrite(t *testing.T) {
	buf := NewHeapBuffer(make([]byte, 16))
	require.NoError(t, buf.PutUint32(0, 0xDEADBEEF))
	require.Equal(t, uint32(0xDEADBEEF), buf.GetUint32(0))

	require.NoError(t, buf.PutFloat64(8, 3.5))
	require.Equal(t, 3.5, buf.GetFloat64(8))
}

func TestReadOnlyBufferRejectsWrites(t *testing.T) {
	buf := NewReadOnlyBuffer(make([]byte, 16))
	err := buf.PutByte(0, 1)
	require.True(t, errors.Is(err, ErrReadOnly))
}

func TestOffHeapBufferRoundTrip(t *testing.T) {
	buf, err := NewOffHeapBuffer(64)
	require.NoError(t, err)
	closer, ok := buf.(interface{ Close() error })
	require.True(t, ok)
	defer func() { require.NoError(t, closer.Close()) }()

	require.NoError(t, buf.PutUint64(0, 0x0102030405060708))
	require.Equal(t, uint64(0x0102030405060708), buf.GetUint64(0))
}

func TestSketchOverOffHeapBuffer(t *testing.T) {
	need := GetMaxUpdatableSerializationBytes(8, HLL8)
	buf, err := NewOffHeapBuffer(need)
	require.NoError(t, err)
	closer := buf.(interface{ Close() error })
	defer func() { require.NoError(t, closer.Close()) }()

	s, err := NewWithBuffer(8, HLL8, buf)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		require.NoError(t, s.UpdateUint64(uint64(i)))
	}

	// A fresh Wrap over the same buffer must see the same state.
	wrapped, err := Wrap(buf)
	require.NoError(t, err)
	est1, err := s.GetEstimate()
	require.NoError(t, err)
	est2, err := wrapped.GetEstimate()
	require.NoError(t, err)
	require.Equal(t, est1, est2)
}
