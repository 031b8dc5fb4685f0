// Package hyperloglog implements a HyperLogLog cardinality estimator with a
// LIST -> SET -> HLL state machine and three dense sub-encodings (HLL_4,
// HLL_6, HLL_8), following the design of the Apache DataSketches HLL family.
package hyperloglog

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Sketch is a single cardinality estimator. It starts empty in LIST mode and
// promotes itself through SET and into dense HLL storage as more distinct
// items are added (spec section 3). The zero value is not usable; construct
// with New or Heapify.
type Sketch struct {
	state sketchState
	buf   Buffer // non-nil only when constructed over a caller-owned buffer
}

// New constructs an empty sketch with the given configuration.
func New(lgConfigK int, tgtHllType TgtHllType) (*Sketch, error) {
	lgConfigK, err := checkLgConfigK(lgConfigK)
	if err != nil {
		return nil, err
	}
	return &Sketch{state: newListState(sketchConfig{lgConfigK: lgConfigK, tgtHllType: tgtHllType})}, nil
}

// NewWithBuffer constructs an empty sketch whose updatable serialized form
// is written directly into buf, which the caller owns and must keep alive
// for the sketch's lifetime. buf must have at least
// GetMaxUpdatableSerializationBytes(lgConfigK, tgtHllType) capacity.
func NewWithBuffer(lgConfigK int, tgtHllType TgtHllType, buf Buffer) (*Sketch, error) {
	lgConfigK, err := checkLgConfigK(lgConfigK)
	if err != nil {
		return nil, err
	}
	need := GetMaxUpdatableSerializationBytes(lgConfigK, tgtHllType)
	if buf.Capacity() < need {
		return nil, errCapacityf("buffer has %d bytes, need %d", buf.Capacity(), need)
	}
	s := &Sketch{state: newListState(sketchConfig{lgConfigK: lgConfigK, tgtHllType: tgtHllType}), buf: buf}
	bytes, err := s.state.toUpdatableBytes()
	if err != nil {
		return nil, err
	}
	if err := buf.CopyFrom(0, bytes); err != nil {
		return nil, err
	}
	return s, nil
}

// Heapify reconstructs a sketch from a previously serialized (compact or
// updatable) byte image, copying the data onto the heap.
func Heapify(data []byte) (*Sketch, error) {
	state, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	return &Sketch{state: state}, nil
}

// Wrap decodes the image in buf into a sketch that keeps buf as its backing
// buffer: every mutation re-serializes the updatable form into buf. If buf
// is read-only, the returned sketch rejects any mutating call with
// ErrReadOnly.
func Wrap(buf Buffer) (*Sketch, error) {
	state, err := decodeState(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &Sketch{state: state, buf: buf}, nil
}

func decodeState(data []byte) (sketchState, error) {
	p, err := readPreamble(data)
	if err != nil {
		return nil, err
	}
	switch p.curMode {
	case curModeList:
		return readListState(p, data)
	case curModeSet:
		return readSetState(p, data)
	default:
		return readHllArray(p, data)
	}
}

// Update hashes an arbitrary byte slice and folds it into the sketch.
func (s *Sketch) Update(item []byte) error {
	return s.applyCoupon(makeCoupon(hashItem(item)))
}

// UpdateString hashes a string item. Equivalent to Update([]byte(item)) but
// avoids an extra allocation for the common string case.
func (s *Sketch) UpdateString(item string) error {
	return s.applyCoupon(makeCoupon(hashItem([]byte(item))))
}

// UpdateUint64 hashes a fixed-width numeric item, encoded little-endian so
// the result is independent of host architecture.
func (s *Sketch) UpdateUint64(item uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], item)
	return s.applyCoupon(makeCoupon(hashItem(b[:])))
}

func (s *Sketch) applyCoupon(c uint32) error {
	if s.buf != nil && s.buf.ReadOnly() {
		return ErrReadOnly
	}
	next, err := s.state.couponUpdate(c)
	if err != nil {
		return err
	}
	s.state = next
	return s.syncBuffer()
}

// syncBuffer re-serializes into the caller-owned buffer after a mutation,
// when the sketch was constructed with one. On-heap sketches are a no-op
// here; their state already is the source of truth.
func (s *Sketch) syncBuffer() error {
	if s.buf == nil {
		return nil
	}
	bytes, err := s.state.toUpdatableBytes()
	if err != nil {
		return err
	}
	if s.buf.Capacity() < len(bytes) {
		return errCapacityf("backing buffer has %d bytes, need %d after promotion", s.buf.Capacity(), len(bytes))
	}
	return s.buf.CopyFrom(0, bytes)
}

// GetEstimate returns the sketch's best point estimate: exact count in
// LIST/SET mode, composite estimate in HLL mode.
func (s *Sketch) GetEstimate() (float64, error) { return s.state.getEstimate() }

// GetCompositeEstimate returns the composite (non-HIP) estimator's value.
// In LIST/SET mode this is the same exact count as GetEstimate.
func (s *Sketch) GetCompositeEstimate() (float64, error) { return s.state.getCompositeEstimate() }

// GetHipEstimate returns the Historic Inverse Probability estimator's
// running value. Unlike the composite estimate, this is path-dependent: two
// sketches built from the same multiset in different insertion orders may
// report different HIP estimates (spec section 5).
func (s *Sketch) GetHipEstimate() (float64, error) { return s.state.getHipEstimate() }

func (s *Sketch) GetLowerBound(numStdDev int) (float64, error) { return s.state.getLowerBound(numStdDev) }
func (s *Sketch) GetUpperBound(numStdDev int) (float64, error) { return s.state.getUpperBound(numStdDev) }

func (s *Sketch) IsEmpty() bool             { return s.state.isEmpty() }
func (s *Sketch) GetLgConfigK() int         { return s.state.getLgConfigK() }
func (s *Sketch) GetTgtHllType() TgtHllType { return s.state.getTgtHllType() }
func (s *Sketch) GetCurMode() string        { return s.state.curMode().String() }

// Reset returns the sketch to an empty LIST-mode sketch with the same
// configuration, the one case where mode may move backward (spec section
// 8, invariant 5).
func (s *Sketch) Reset() error {
	s.state = newListState(sketchConfig{lgConfigK: s.state.getLgConfigK(), tgtHllType: s.state.getTgtHllType()})
	return s.syncBuffer()
}

// Copy returns an independent on-heap deep copy of s.
func (s *Sketch) Copy() (*Sketch, error) {
	cp, err := s.state.copyState()
	if err != nil {
		return nil, err
	}
	return &Sketch{state: cp}, nil
}

// CopyAs returns an independent on-heap copy re-encoded as the requested HLL
// sub-type. If s is not yet in HLL mode, its coupons are replayed into a
// fresh LIST sketch of the requested type, so the copy stays in LIST or SET
// mode; it is not promoted to an HLL array.
func (s *Sketch) CopyAs(t TgtHllType) (*Sketch, error) {
	if s.state.curMode() == curModeHll {
		cp, err := s.state.copyAs(t)
		if err != nil {
			return nil, err
		}
		return &Sketch{state: cp}, nil
	}
	cfg := sketchConfig{lgConfigK: s.state.getLgConfigK(), tgtHllType: t}
	var dest sketchState = newListState(cfg)
	it := s.state.iterator()
	cpIt, ok := it.(*couponPairIterator)
	if !ok {
		return nil, errFormatf("unexpected iterator type for mode %s", s.state.curMode())
	}
	for cpIt.nextValid() {
		next, err := dest.couponUpdate(cpIt.coupon())
		if err != nil {
			return nil, err
		}
		dest = next
	}
	return &Sketch{state: dest}, nil
}

func (s *Sketch) ToCompactBytes() ([]byte, error)   { return s.state.toCompactBytes() }
func (s *Sketch) ToUpdatableBytes() ([]byte, error) { return s.state.toUpdatableBytes() }

// GetMaxUpdatableSerializationBytes bounds the buffer size an off-heap
// sketch of this configuration could ever need, across every mode it will
// pass through on the way to HLL. This must include SET's peak footprint,
// not just the final HLL array: promoteAt (3K/4 in setState.couponUpdate)
// is exactly SET's 3/4-load resize threshold, so the table always grows to
// a full K entries immediately before promoting, and setHeaderBytes+K*4 is
// larger than every HLL representation's regs+aux for every tgtHllType.
func GetMaxUpdatableSerializationBytes(lgConfigK int, tgtHllType TgtHllType) int {
	k := 1 << lgConfigK
	regs := regBytesFor(tgtHllType, k)
	maxAux := 0
	if tgtHllType == HLL4 {
		lg := lgAuxArrInts[lgConfigK]
		if lg < 2 {
			lg = 2
		}
		maxAux = (1 << lg) * 4
	}
	hllBytes := hllHeaderBytes + regs + maxAux
	setBytes := setHeaderBytes + k*4
	if setBytes > hllBytes {
		return setBytes
	}
	return hllBytes
}

// GetMaxUpdatableSerializationBytes is also exposed as a method for callers
// that already have a constructed Sketch and want its own worst case.
func (s *Sketch) GetMaxUpdatableSerializationBytes() int {
	return GetMaxUpdatableSerializationBytes(s.state.getLgConfigK(), s.state.getTgtHllType())
}

// ForEachRegister visits every (index, value) register pair via the
// iterator protocol (spec section 4.11). In LIST/SET mode, index is a
// coupon's full 26-bit address rather than a register slot.
func (s *Sketch) ForEachRegister(fn func(index, value int)) {
	it := s.state.iterator()
	for it.nextValid() {
		fn(it.index(), it.value())
	}
}

// AuxExceptions returns the HLL_4 auxiliary exception table as an
// index-to-value map, or nil if the sketch is not an HLL_4 array or has no
// exceptions recorded.
func (s *Sketch) AuxExceptions() map[int]int {
	h, ok := s.state.(*hllArray)
	if !ok || h.aux == nil {
		return nil
	}
	out := make(map[int]int, h.aux.count)
	h.aux.forEach(func(index, value int) { out[index] = value })
	return out
}

// DebugOptions selects which sections DebugString renders, mirroring the
// summary/detail/auxDetail toggles of the reference implementation's
// toString(summary, detail, auxDetail, all) overloads (spec section 12).
type DebugOptions struct {
	Summary   bool // mode, configuration, and estimate on one line
	Detail    bool // every (index, value) register pair, one per line
	AuxDetail bool // the HLL_4 auxiliary exception table, if present
}

// DebugString renders a human-readable dump of the sketch according to
// opts. Sections are independent and can be combined; an empty DebugOptions
// renders an empty string.
func (s *Sketch) DebugString(opts DebugOptions) string {
	var b strings.Builder
	if opts.Summary {
		est, _ := s.GetEstimate()
		fmt.Fprintf(&b, "%s lgConfigK=%d type=%s estimate=%.2f\n",
			s.state.curMode(), s.state.getLgConfigK(), s.state.getTgtHllType(), est)
	}
	if opts.Detail {
		s.ForEachRegister(func(index, value int) {
			fmt.Fprintf(&b, "  [%d]=%d\n", index, value)
		})
	}
	if opts.AuxDetail {
		for index, value := range s.AuxExceptions() {
			fmt.Fprintf(&b, "  aux[%d]=%d\n", index, value)
		}
	}
	return b.String()
}
