package hyperloglog

import "math"

// hllHipRSEFactor and hllNonHipRSEFactor are the asymptotic relative-standard-
// error constants for the HIP and non-HIP (composite) estimators,
// rho = sqrt(ln 2) and sqrt(3 ln 2 - 1) respectively. Borrowed from the
// reference HLL estimator's closed-form asymptotics rather than its
// per-lgConfigK interpolation tables for K < 2^12: those tables are tuned
// empirically from simulation and reproducing them verbatim would be a
// disproportionate amount of hand-copied data for a single approximation
// branch (documented as an Open Question resolution).
var (
	hllHipRSEFactor    = math.Sqrt(math.Log(2.0))
	hllNonHipRSEFactor = math.Sqrt(3.0*math.Log(2.0) - 1.0)
)

// hllArray is the dense register-array representation, shared by all three
// sub-encodings (HLL_4/6/8). Which encoding is active is fixed by
// cfg.tgtHllType and never changes except via copyAs, which builds a fresh
// hllArray of the requested type.
type hllArray struct {
	cfg sketchConfig

	curMin      int
	numAtCurMin int
	hipAccum    float64
	kxq0        float64
	kxq1        float64
	outOfOrder  bool

	regs []byte      // packed register bytes, layout per cfg.tgtHllType
	aux  *auxHashMap // HLL_4 overflow exceptions; nil for HLL_6/HLL_8 and whenever empty
}

func numRegisters(lgConfigK int) int { return 1 << lgConfigK }

func regBytesFor(t TgtHllType, numSlots int) int {
	switch t {
	case HLL4:
		return hll4Bytes(numSlots)
	case HLL6:
		return hll6Bytes(numSlots)
	default:
		return hll8Bytes(numSlots)
	}
}

// newHllArray allocates a freshly zeroed HLL array at the state described in
// spec section 4.8's SET -> HLL transition: curMin 0, numAtCurMin K,
// hipAccum 0, kxq0 = K, kxq1 = 0.
func newHllArray(cfg sketchConfig) *hllArray {
	k := numRegisters(cfg.lgConfigK)
	return &hllArray{
		cfg:         cfg,
		numAtCurMin: k,
		kxq0:        float64(k),
		regs:        make([]byte, regBytesFor(cfg.tgtHllType, k)),
	}
}

func (h *hllArray) curMode() curMode          { return curModeHll }
func (h *hllArray) getLgConfigK() int         { return h.cfg.lgConfigK }
func (h *hllArray) getTgtHllType() TgtHllType { return h.cfg.tgtHllType }
func (h *hllArray) isOutOfOrder() bool        { return h.outOfOrder }
func (h *hllArray) setOutOfOrder(v bool)      { h.outOfOrder = v }

func (h *hllArray) isEmpty() bool {
	return h.curMin == 0 && h.numAtCurMin == numRegisters(h.cfg.lgConfigK)
}

func (h *hllArray) getRegister(idx int) int {
	switch h.cfg.tgtHllType {
	case HLL4:
		return h.hll4TrueValue(idx)
	case HLL6:
		return hll6Get(h.regs, idx)
	default:
		return hll8Get(h.regs, idx)
	}
}

func (h *hllArray) setRegister(idx, trueVal int) {
	switch h.cfg.tgtHllType {
	case HLL4:
		h.hll4SetTrueValue(idx, trueVal)
	case HLL6:
		hll6Set(h.regs, idx, trueVal)
	default:
		hll8Set(h.regs, idx, trueVal)
	}
}

// couponUpdate applies one coupon's (index, value) pair, maintaining the HIP
// accumulator and numAtCurMin per spec section 4.6. HLL never promotes
// further, so it always returns itself.
func (h *hllArray) couponUpdate(c uint32) (sketchState, error) {
	idx := registerIndex(c, h.cfg.lgConfigK)
	newVal := couponValue(c)
	oldVal := h.getRegister(idx)
	if newVal <= oldVal {
		return h, nil
	}

	bucket := 0
	if oldVal >= 32 {
		bucket = 1
	}
	h.kxqAdd(bucket, -math.Exp2(-float64(oldVal)))
	h.kxqAdd(bucket, math.Exp2(-float64(newVal)))
	h.hipAccum += float64(numRegisters(h.cfg.lgConfigK)) / (h.kxq0 + h.kxq1)

	h.setRegister(idx, newVal)

	if oldVal == h.curMin {
		h.numAtCurMin--
		if h.numAtCurMin <= 0 && h.cfg.tgtHllType == HLL4 {
			h.hll4Rebase()
		}
	}
	return h, nil
}

func (h *hllArray) kxqAdd(bucket int, delta float64) {
	if bucket == 0 {
		h.kxq0 += delta
	} else {
		h.kxq1 += delta
	}
}

func (h *hllArray) getHipEstimate() (float64, error) { return h.hipAccum, nil }

// getEstimate is the estimator Sketch.GetEstimate reports by default: the
// composite estimator, matching the reference implementation's choice of
// the non-HIP estimator as the "public" one.
func (h *hllArray) getEstimate() (float64, error) { return h.getCompositeEstimate() }

// getCompositeEstimate implements spec section 4.9's composite estimator:
// the standard HLL raw estimate with alpha(K) correction, falling back to
// the small-range linear-counting estimator when the raw estimate is below
// 2.5K and there are unhit registers.
func (h *hllArray) getCompositeEstimate() (float64, error) {
	lgConfigK := h.cfg.lgConfigK
	k := float64(numRegisters(lgConfigK))
	rawEst := alphaFor(lgConfigK) * k * k / (h.kxq0 + h.kxq1)

	numUnhit := 0
	if h.curMin == 0 {
		numUnhit = h.numAtCurMin
	}
	if rawEst < 2.5*k && numUnhit > 0 {
		return k * math.Log(k/float64(numUnhit)), nil
	}
	return rawEst, nil
}

// alphaFor is the standard HLL bias-correction constant, with the small-K
// corrections from Flajolet et al. (reused from the reference estimator).
func alphaFor(lgConfigK int) float64 {
	k := float64(numRegisters(lgConfigK))
	switch lgConfigK {
	case 4:
		return 0.673
	case 5:
		return 0.697
	case 6:
		return 0.709
	default:
		return 0.7213 / (1.0 + 1.079/k)
	}
}

func (h *hllArray) relErrFactor(upperBound bool) float64 {
	rse := hllHipRSEFactor
	if h.outOfOrder {
		rse = hllNonHipRSEFactor
	}
	_ = upperBound // the asymptotic approximation is symmetric; see DESIGN.md
	return rse / math.Sqrt(float64(numRegisters(h.cfg.lgConfigK)))
}

func (h *hllArray) getUpperBound(numStdDev int) (float64, error) {
	est, err := h.getEstimate()
	if err != nil {
		return 0, err
	}
	relErr := float64(numStdDev) * h.relErrFactor(true)
	return est / (1.0 - relErr), nil
}

func (h *hllArray) getLowerBound(numStdDev int) (float64, error) {
	est, err := h.getEstimate()
	if err != nil {
		return 0, err
	}
	numNonZero := float64(numRegisters(h.cfg.lgConfigK))
	if h.curMin == 0 {
		numNonZero -= float64(h.numAtCurMin)
	}
	relErr := float64(numStdDev) * h.relErrFactor(false)
	return math.Max(est/(1.0+relErr), numNonZero), nil
}

func (h *hllArray) iterator() pairIterator {
	numSlots := numRegisters(h.cfg.lgConfigK)
	return newGenericPairIterator(numSlots, func(slot int) int { return h.getRegister(slot) })
}

func (h *hllArray) copyState() (sketchState, error) {
	cp := &hllArray{
		cfg:         h.cfg,
		curMin:      h.curMin,
		numAtCurMin: h.numAtCurMin,
		hipAccum:    h.hipAccum,
		kxq0:        h.kxq0,
		kxq1:        h.kxq1,
		outOfOrder:  h.outOfOrder,
		regs:        append([]byte(nil), h.regs...),
	}
	if h.aux != nil {
		cp.aux = h.aux.clone()
	}
	return cp, nil
}

// copyAs builds a fresh hllArray of the requested sub-encoding by iterating
// every true register value into a new array (spec section 4.8). HIP state
// is not encoding-specific and carries over unchanged; the composite
// estimate is invariant by construction since every true value is preserved.
func (h *hllArray) copyAs(t TgtHllType) (sketchState, error) {
	if t == h.cfg.tgtHllType {
		return h.copyState()
	}
	cfg := sketchConfig{lgConfigK: h.cfg.lgConfigK, tgtHllType: t}
	out := newHllArray(cfg)
	out.outOfOrder = h.outOfOrder
	out.hipAccum = h.hipAccum
	out.kxq0 = h.kxq0
	out.kxq1 = h.kxq1
	numSlots := numRegisters(h.cfg.lgConfigK)
	out.numAtCurMin = 0
	for i := 0; i < numSlots; i++ {
		v := h.getRegister(i)
		if v == 0 {
			out.numAtCurMin++
			continue
		}
		out.setRegister(i, v)
	}
	return out, nil
}
