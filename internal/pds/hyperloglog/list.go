package hyperloglog

// listCapacity is the maximum number of coupons LIST mode holds before it
// promotes to SET (spec section 4.2). Every sketch starts here: a single
// distinct item produces a one-entry LIST whose estimate is exact.
const listCapacity = 8

// listState is the first and smallest of the three representations. It is a
// flat, insertion-ordered, deduplicated array of coupons, scanned linearly on
// every update. Linear scan is deliberate: at 8 entries a hash table buys
// nothing and the array serializes to the most compact possible image.
type listState struct {
	cfg      sketchConfig
	coupons  [listCapacity]uint32
	count    int
	outOfOrder bool
}

func newListState(cfg sketchConfig) *listState {
	return &listState{cfg: cfg}
}

func (s *listState) curMode() curMode           { return curModeList }
func (s *listState) getLgConfigK() int          { return s.cfg.lgConfigK }
func (s *listState) getTgtHllType() TgtHllType  { return s.cfg.tgtHllType }
func (s *listState) isEmpty() bool              { return s.count == 0 }
func (s *listState) isOutOfOrder() bool         { return s.outOfOrder }
func (s *listState) setOutOfOrder(v bool)       { s.outOfOrder = v }

// couponUpdate scans for an existing match before appending, so the same
// item added twice never grows the list. When the list is full and the
// coupon is new, it promotes to SET and replays its own entries there before
// inserting the new one.
func (s *listState) couponUpdate(c uint32) (sketchState, error) {
	for i := 0; i < s.count; i++ {
		if s.coupons[i] == c {
			return s, nil
		}
	}
	if s.count < listCapacity {
		s.coupons[s.count] = c
		s.count++
		return s, nil
	}

	set := newSetState(s.cfg)
	for i := 0; i < s.count; i++ {
		if _, err := set.couponUpdate(s.coupons[i]); err != nil {
			return nil, err
		}
	}
	set.outOfOrder = s.outOfOrder
	return set.couponUpdate(c)
}

func (s *listState) getEstimate() (float64, error) {
	return float64(s.count), nil
}

func (s *listState) getCompositeEstimate() (float64, error) { return s.getEstimate() }
func (s *listState) getHipEstimate() (float64, error)       { return s.getEstimate() }

// getLowerBound and getUpperBound are exact in LIST mode: every coupon
// represents a distinct item by construction, so there is no estimation
// error to bound (spec section 4.9).
func (s *listState) getLowerBound(numStdDev int) (float64, error) { return s.getEstimate() }
func (s *listState) getUpperBound(numStdDev int) (float64, error) { return s.getEstimate() }

func (s *listState) iterator() pairIterator {
	return newCouponPairIterator(append([]uint32(nil), s.coupons[:s.count]...))
}

func (s *listState) copyState() (sketchState, error) {
	cp := *s
	return &cp, nil
}

func (s *listState) copyAs(t TgtHllType) (sketchState, error) {
	cp := *s
	cp.cfg.tgtHllType = t
	return &cp, nil
}

func (s *listState) toCompactBytes() ([]byte, error) {
	n := listHeaderBytes + s.count*4
	buf := NewHeapBuffer(make([]byte, n))
	if err := s.writeInto(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *listState) toUpdatableBytes() ([]byte, error) {
	n := listHeaderBytes + listCapacity*4
	buf := NewHeapBuffer(make([]byte, n))
	if err := s.writeInto(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *listState) updatableSerializationBytes() int {
	return listHeaderBytes + listCapacity*4
}

func (s *listState) writeInto(buf Buffer) error {
	flags := byte(0)
	if s.isEmpty() {
		flags |= flagEmpty
	}
	if s.outOfOrder {
		flags |= flagOutOfOrder
	}
	p := preamble{
		curMode:      curModeList,
		lgConfigK:    s.cfg.lgConfigK,
		tgtHllType:   s.cfg.tgtHllType,
		lgArrOrCount: s.count,
		flags:        flags,
	}
	if err := writePreamble(buf, p); err != nil {
		return err
	}
	off := listHeaderBytes
	for i := 0; i < s.count; i++ {
		if err := buf.PutUint32(off, s.coupons[i]); err != nil {
			return err
		}
		off += 4
	}
	return nil
}

// readListState decodes a LIST-mode image previously written by
// writeInto/toCompactBytes/toUpdatableBytes.
func readListState(p preamble, data []byte) (*listState, error) {
	s := newListState(sketchConfig{lgConfigK: p.lgConfigK, tgtHllType: p.tgtHllType})
	s.outOfOrder = p.flags&flagOutOfOrder != 0
	count := p.lgArrOrCount
	if count > listCapacity {
		return nil, errFormatf("LIST coupon count %d exceeds capacity %d", count, listCapacity)
	}
	need := listHeaderBytes + count*4
	if len(data) < need {
		return nil, errCapacityf("LIST image needs %d bytes, have %d", need, len(data))
	}
	off := listHeaderBytes
	for i := 0; i < count; i++ {
		s.coupons[i] = le32(data[off : off+4])
		off += 4
	}
	s.count = count
	return s, nil
}
