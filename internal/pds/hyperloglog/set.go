package hyperloglog

import "github.com/cespare/xxhash/v2"

// setInitialCapacity is the table size allocated when LIST overflows into
// SET (spec section 4.5). Capacity always stays a power of two so the probe
// mask is a simple AND.
const setInitialCapacity = 16

// setResizeNumerator/setResizeDenominator express the 3/4 load factor that
// triggers a capacity doubling.
const (
	setResizeNumerator   = 3
	setResizeDenominator = 4
)

// setState is the open-addressed hash table of coupons used once a sketch
// has more distinct items than LIST can hold. Slot value 0 always means
// empty, which is safe because makeCoupon never produces an all-zero coupon
// (its value field is always >= 1).
type setState struct {
	cfg        sketchConfig
	table      []uint32
	count      int
	outOfOrder bool
}

func newSetState(cfg sketchConfig) *setState {
	return &setState{cfg: cfg, table: make([]uint32, setInitialCapacity)}
}

func (s *setState) curMode() curMode          { return curModeSet }
func (s *setState) getLgConfigK() int         { return s.cfg.lgConfigK }
func (s *setState) getTgtHllType() TgtHllType { return s.cfg.tgtHllType }
func (s *setState) isEmpty() bool             { return s.count == 0 }
func (s *setState) isOutOfOrder() bool        { return s.outOfOrder }
func (s *setState) setOutOfOrder(v bool)      { s.outOfOrder = v }

// couponProbeSlot mixes the coupon's bit pattern with xxhash, a library
// otherwise unused in LIST/SET mode, and masks the result down to the
// table's home slot; findSlot then probes linearly (+1 per collision) from
// there. This mixer is part of the serialized-format contract: re-wrapping
// an updatable SET image must reproduce the same probe sequence, so it may
// never change.
func couponProbeSlot(c uint32, capacity int) int {
	var b [4]byte
	b[0] = byte(c)
	b[1] = byte(c >> 8)
	b[2] = byte(c >> 16)
	b[3] = byte(c >> 24)
	h := xxhash.Sum64(b[:])
	mask := uint64(capacity - 1)
	return int(h & mask)
}

// findSlot performs linear probing from the coupon's home slot and returns
// either the index already holding it, or the first empty slot found, plus
// whether the coupon was already present.
func (s *setState) findSlot(c uint32) (slot int, present bool) {
	capacity := len(s.table)
	idx := couponProbeSlot(c, capacity)
	for i := 0; i < capacity; i++ {
		cur := s.table[idx]
		if cur == 0 {
			return idx, false
		}
		if cur == c {
			return idx, true
		}
		idx = (idx + 1) & (capacity - 1)
	}
	// Unreachable under the 3/4 load factor invariant maintained by
	// couponUpdate, which always resizes before the table can fill.
	return -1, false
}

func (s *setState) couponUpdate(c uint32) (sketchState, error) {
	slot, present := s.findSlot(c)
	if present {
		return s, nil
	}
	if slot < 0 {
		return nil, errCapacityf("SET table full at capacity %d", len(s.table))
	}
	s.table[slot] = c
	s.count++

	if s.count*setResizeDenominator > len(s.table)*setResizeNumerator {
		s.grow()
	}

	promoteAt := 3 << (s.cfg.lgConfigK - 2)
	if s.count >= promoteAt {
		return s.promoteToHll()
	}
	return s, nil
}

func (s *setState) grow() {
	old := s.table
	s.table = make([]uint32, len(old)*2)
	for _, c := range old {
		if c == 0 {
			continue
		}
		slot, _ := s.findSlot(c)
		s.table[slot] = c
	}
}

// promoteToHll allocates a dense register array in the sketch's tgtHllType
// and replays every coupon into it via the standard HLL update path (spec
// section 4.5's "SET -> HLL" transition).
func (s *setState) promoteToHll() (sketchState, error) {
	hll := newHllArray(s.cfg)
	hll.outOfOrder = s.outOfOrder
	var state sketchState = hll
	for _, c := range s.table {
		if c == 0 {
			continue
		}
		next, err := state.couponUpdate(c)
		if err != nil {
			return nil, err
		}
		state = next
	}
	return state, nil
}

func (s *setState) getEstimate() (float64, error)          { return float64(s.count), nil }
func (s *setState) getCompositeEstimate() (float64, error) { return s.getEstimate() }
func (s *setState) getHipEstimate() (float64, error)       { return s.getEstimate() }

// getLowerBound and getUpperBound are exact in SET mode for the same reason
// as LIST: the table holds exactly one entry per distinct item.
func (s *setState) getLowerBound(numStdDev int) (float64, error) { return s.getEstimate() }
func (s *setState) getUpperBound(numStdDev int) (float64, error) { return s.getEstimate() }

func (s *setState) iterator() pairIterator {
	return newCouponPairIterator(s.validCoupons())
}

func (s *setState) validCoupons() []uint32 {
	out := make([]uint32, 0, s.count)
	for _, c := range s.table {
		if c != 0 {
			out = append(out, c)
		}
	}
	return out
}

func (s *setState) copyState() (sketchState, error) {
	cp := &setState{cfg: s.cfg, count: s.count, outOfOrder: s.outOfOrder}
	cp.table = append([]uint32(nil), s.table...)
	return cp, nil
}

func (s *setState) copyAs(t TgtHllType) (sketchState, error) {
	cp, err := s.copyState()
	if err != nil {
		return nil, err
	}
	set := cp.(*setState)
	set.cfg.tgtHllType = t
	return set, nil
}

// lgArrInts returns log2 of the table's current capacity, stored in the
// preamble so a reader can size its own table before rehashing.
func (s *setState) lgArrInts() int {
	lg := 0
	for 1<<lg < len(s.table) {
		lg++
	}
	return lg
}

func (s *setState) toCompactBytes() ([]byte, error) {
	n := setHeaderBytes + s.count*4
	buf := NewHeapBuffer(make([]byte, n))
	if err := s.writeInto(buf, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *setState) toUpdatableBytes() ([]byte, error) {
	n := setHeaderBytes + len(s.table)*4
	buf := NewHeapBuffer(make([]byte, n))
	if err := s.writeInto(buf, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *setState) updatableSerializationBytes() int {
	return setHeaderBytes + len(s.table)*4
}

func (s *setState) writeInto(buf Buffer, compact bool) error {
	flags := byte(flagCompact)
	if !compact {
		flags = 0
	}
	if s.isEmpty() {
		flags |= flagEmpty
	}
	if s.outOfOrder {
		flags |= flagOutOfOrder
	}
	p := preamble{
		curMode:      curModeSet,
		lgConfigK:    s.cfg.lgConfigK,
		tgtHllType:   s.cfg.tgtHllType,
		lgArrOrCount: s.lgArrInts(),
		flags:        flags,
	}
	if err := writePreamble(buf, p); err != nil {
		return err
	}
	off := setHeaderBytes
	if compact {
		for _, c := range s.validCoupons() {
			if err := buf.PutUint32(off, c); err != nil {
				return err
			}
			off += 4
		}
		return nil
	}
	for _, c := range s.table {
		if err := buf.PutUint32(off, c); err != nil {
			return err
		}
		off += 4
	}
	return nil
}

// readSetState decodes a SET-mode image. Compact images list only valid
// coupons and are rehashed into a fresh table; updatable images carry the
// full table (including empty slots) and are loaded verbatim so the probe
// sequence from couponProbeSlot is preserved exactly.
func readSetState(p preamble, data []byte) (*setState, error) {
	s := &setState{cfg: sketchConfig{lgConfigK: p.lgConfigK, tgtHllType: p.tgtHllType}}
	s.outOfOrder = p.flags&flagOutOfOrder != 0
	compact := p.flags&flagCompact != 0

	if compact {
		s.table = make([]uint32, setInitialCapacity)
		off := setHeaderBytes
		for off+4 <= len(data) {
			c := le32(data[off : off+4])
			off += 4
			if _, err := s.couponUpdate(c); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	capacity := 1 << p.lgArrOrCount
	need := setHeaderBytes + capacity*4
	if len(data) < need {
		return nil, errCapacityf("SET image needs %d bytes, have %d", need, len(data))
	}
	s.table = make([]uint32, capacity)
	off := setHeaderBytes
	for i := 0; i < capacity; i++ {
		c := le32(data[off : off+4])
		if c != 0 {
			s.table[i] = c
			s.count++
		}
		off += 4
	}
	return s, nil
}
