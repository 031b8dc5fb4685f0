package hyperloglog

import "fmt"

// curMode identifies which of the three internal storage modes a sketch is
// currently in. Transitions are monotonic: LIST -> SET -> HLL, never
// backward (except Reset, which restarts at LIST).
type curMode uint8

const (
	curModeList curMode = 0
	curModeSet  curMode = 1
	curModeHll  curMode = 2
)

func (m curMode) String() string {
	switch m {
	case curModeList:
		return "LIST"
	case curModeSet:
		return "SET"
	case curModeHll:
		return "HLL"
	default:
		return "UNKNOWN"
	}
}

// TgtHllType selects the HLL sub-encoding used once a sketch promotes to
// dense HLL mode. All three are isomorphic: same lgConfigK and the same
// input sequence produce the same estimate regardless of type.
type TgtHllType uint8

const (
	HLL4 TgtHllType = 0
	HLL6 TgtHllType = 1
	HLL8 TgtHllType = 2
)

func (t TgtHllType) String() string {
	switch t {
	case HLL4:
		return "HLL_4"
	case HLL6:
		return "HLL_6"
	case HLL8:
		return "HLL_8"
	default:
		return "UNKNOWN"
	}
}

const (
	minLgConfigK = 4
	maxLgConfigK = 21

	familyID      = 7 // fixed constant identifying an HLL family image
	serialVersion = 1

	listPreambleInts = 2 // 8 bytes
	setPreambleInts  = 2 // 8 bytes
	hllPreambleInts  = 10 // 40 bytes

	listHeaderBytes = listPreambleInts * 4
	setHeaderBytes  = setPreambleInts * 4
	hllHeaderBytes  = hllPreambleInts * 4
)

// Flag bits for the preamble's flags byte (spec section 6).
const (
	flagBigEndian  byte = 1 << 0 // reserved; images are always little-endian
	flagReadOnly   byte = 1 << 1
	flagEmpty      byte = 1 << 2
	flagCompact    byte = 1 << 3
	flagOutOfOrder byte = 1 << 4
)

// preamble is the decoded form of the fixed header every serialized sketch
// begins with.
type preamble struct {
	curMode      curMode
	lgConfigK    int
	tgtHllType   TgtHllType
	lgArrOrCount int // SET: lgCouponArrInts. LIST: coupon count. HLL: unused (0).
	flags        byte

	// HLL-only fields, valid when curMode == curModeHll.
	curMin      int
	numAtCurMin int
	hipAccum    float64
	kxq0        float64
	kxq1        float64
	auxCount    int
}

func headerBytesFor(m curMode) int {
	switch m {
	case curModeList:
		return listHeaderBytes
	case curModeSet:
		return setHeaderBytes
	default:
		return hllHeaderBytes
	}
}

func preambleIntsFor(m curMode) int {
	switch m {
	case curModeList:
		return listPreambleInts
	case curModeSet:
		return setPreambleInts
	default:
		return hllPreambleInts
	}
}

// writePreamble encodes p into buf at offset 0, little-endian, per spec
// section 6's byte layout. The caller must have already verified buf has at
// least headerBytesFor(p.curMode) capacity.
func writePreamble(buf Buffer, p preamble) error {
	n := headerBytesFor(p.curMode)
	if buf.Capacity() < n {
		return fmt.Errorf("%w: need %d bytes for %s preamble, have %d", ErrCapacity, n, p.curMode, buf.Capacity())
	}
	if err := buf.PutByte(0, byte(preambleIntsFor(p.curMode))); err != nil {
		return err
	}
	if err := buf.PutByte(1, byte(serialVersion)); err != nil {
		return err
	}
	if err := buf.PutByte(2, byte(familyID)); err != nil {
		return err
	}
	if err := buf.PutByte(3, byte(p.lgConfigK)); err != nil {
		return err
	}
	if err := buf.PutByte(4, byte(p.lgArrOrCount)); err != nil {
		return err
	}
	if err := buf.PutByte(5, p.flags); err != nil {
		return err
	}
	if err := buf.PutByte(6, byte(p.tgtHllType)); err != nil {
		return err
	}
	if err := buf.PutByte(7, byte(p.curMode)); err != nil {
		return err
	}
	if p.curMode != curModeHll {
		return nil
	}
	if err := buf.PutByte(8, byte(p.curMin)); err != nil {
		return err
	}
	// numAtCurMin packed little-endian into 3 bytes (offsets 9-11); K never
	// exceeds 2^21, comfortably under the 2^24 ceiling of a 3-byte field.
	if err := buf.PutByte(9, byte(p.numAtCurMin)); err != nil {
		return err
	}
	if err := buf.PutByte(10, byte(p.numAtCurMin>>8)); err != nil {
		return err
	}
	if err := buf.PutByte(11, byte(p.numAtCurMin>>16)); err != nil {
		return err
	}
	if err := buf.PutFloat64(12, p.hipAccum); err != nil {
		return err
	}
	if err := buf.PutFloat64(20, p.kxq0); err != nil {
		return err
	}
	if err := buf.PutFloat64(28, p.kxq1); err != nil {
		return err
	}
	if err := buf.PutUint32(36, uint32(p.auxCount)); err != nil {
		return err
	}
	return nil
}

// readPreamble decodes and validates the header at the start of data. It
// returns ErrFormat for any structural corruption and ErrCapacity if data is
// shorter than the declared header.
func readPreamble(data []byte) (preamble, error) {
	var p preamble
	if len(data) < 8 {
		return p, fmt.Errorf("%w: %d bytes, need at least 8 for a preamble", ErrCapacity, len(data))
	}
	preInts := int(data[0])
	serVer := int(data[1])
	famID := int(data[2])
	lgConfigK := int(data[3])
	lgArrOrCount := int(data[4])
	flags := data[5]
	tgtHllType := TgtHllType(data[6])
	mode := curMode(data[7])

	if famID != familyID {
		return p, fmt.Errorf("%w: family id %d, expected %d", ErrFormat, famID, familyID)
	}
	if serVer != serialVersion {
		return p, fmt.Errorf("%w: serial version %d, expected %d", ErrFormat, serVer, serialVersion)
	}
	if lgConfigK < minLgConfigK || lgConfigK > maxLgConfigK {
		return p, fmt.Errorf("%w: lgConfigK %d out of [%d,%d]", ErrFormat, lgConfigK, minLgConfigK, maxLgConfigK)
	}
	if tgtHllType != HLL4 && tgtHllType != HLL6 && tgtHllType != HLL8 {
		return p, fmt.Errorf("%w: unknown tgtHllType %d", ErrFormat, tgtHllType)
	}
	if mode != curModeList && mode != curModeSet && mode != curModeHll {
		return p, fmt.Errorf("%w: unknown curMode %d", ErrFormat, mode)
	}
	if preInts != preambleIntsFor(mode) {
		return p, fmt.Errorf("%w: preambleInts %d inconsistent with mode %s", ErrFormat, preInts, mode)
	}

	p = preamble{
		curMode:      mode,
		lgConfigK:    lgConfigK,
		tgtHllType:   tgtHllType,
		lgArrOrCount: lgArrOrCount,
		flags:        flags,
	}

	if mode != curModeHll {
		return p, nil
	}

	if len(data) < hllHeaderBytes {
		return p, fmt.Errorf("%w: %d bytes, need %d for HLL preamble", ErrCapacity, len(data), hllHeaderBytes)
	}
	p.curMin = int(data[8])
	p.numAtCurMin = int(data[9]) | int(data[10])<<8 | int(data[11])<<16
	p.hipAccum = float64frombytes(data[12:20])
	p.kxq0 = float64frombytes(data[20:28])
	p.kxq1 = float64frombytes(data[28:36])
	p.auxCount = int(uint32(data[36]) | uint32(data[37])<<8 | uint32(data[38])<<16 | uint32(data[39])<<24)
	return p, nil
}
