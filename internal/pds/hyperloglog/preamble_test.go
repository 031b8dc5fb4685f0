package hyperloglog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreambleRoundTripAllModes(t *testing.T) {
	cases := []preamble{
		{curMode: curModeList, lgConfigK: 8, tgtHllType: HLL8, lgArrOrCount: 3},
		{curMode: curModeSet, lgConfigK: 12, tgtHllType: HLL6, lgArrOrCount: 5, flags: flagCompact},
		{
			curMode: curModeHll, lgConfigK: 10, tgtHllType: HLL4,
			curMin: 2, numAtCurMin: 17, hipAccum: 123.5, kxq0: 4.25, kxq1: 0.75, auxCount: 3,
		},
	}
	for _, p := range cases {
		buf := NewHeapBuffer(make([]byte, headerBytesFor(p.curMode)))
		require.NoError(t, writePreamble(buf, p))
		got, err := readPreamble(buf.Bytes())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestReadPreambleRejectsBadFamily(t *testing.T) {
	buf := NewHeapBuffer(make([]byte, 8))
	require.NoError(t, writePreamble(buf, preamble{curMode: curModeList, lgConfigK: 4}))
	corrupt := buf.Bytes()
	corrupt[2] = 99
	_, err := readPreamble(corrupt)
	require.True(t, errors.Is(err, ErrFormat))
}

func TestReadPreambleRejectsOutOfRangeLgConfigK(t *testing.T) {
	buf := NewHeapBuffer(make([]byte, 8))
	require.NoError(t, writePreamble(buf, preamble{curMode: curModeList, lgConfigK: 4}))
	corrupt := buf.Bytes()
	corrupt[3] = 200
	_, err := readPreamble(corrupt)
	require.True(t, errors.Is(err, ErrFormat))
}

func TestReadPreambleRejectsTruncatedData(t *testing.T) {
	_, err := readPreamble(make([]byte, 3))
	require.True(t, errors.Is(err, ErrCapacity))
}
