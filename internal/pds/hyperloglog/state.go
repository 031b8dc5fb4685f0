package hyperloglog

// sketchState is the tagged-variant payload behind a Sketch: exactly one of
// listState, setState, or one of the three hllArray encodings is active at
// any time. Promotion replaces the variant entirely rather than mutating
// through it, per spec section 9's design note.
type sketchState interface {
	curMode() curMode
	getLgConfigK() int
	getTgtHllType() TgtHllType
	isEmpty() bool

	// couponUpdate applies one coupon and returns the (possibly promoted)
	// resulting state. The receiver may return itself if no promotion
	// occurred.
	couponUpdate(c uint32) (sketchState, error)

	getEstimate() (float64, error)
	getCompositeEstimate() (float64, error)
	getHipEstimate() (float64, error)
	getLowerBound(numStdDev int) (float64, error)
	getUpperBound(numStdDev int) (float64, error)

	iterator() pairIterator

	toCompactBytes() ([]byte, error)
	toUpdatableBytes() ([]byte, error)
	updatableSerializationBytes() int

	copyState() (sketchState, error)
	copyAs(t TgtHllType) (sketchState, error)

	isOutOfOrder() bool
	setOutOfOrder(bool)
}

// sketchConfig holds the two immutable configuration parameters shared by
// every representation of a given logical sketch.
type sketchConfig struct {
	lgConfigK  int
	tgtHllType TgtHllType
}

func (c sketchConfig) getLgConfigK() int        { return c.lgConfigK }
func (c sketchConfig) getTgtHllType() TgtHllType { return c.tgtHllType }

func checkLgConfigK(lgConfigK int) (int, error) {
	if lgConfigK < minLgConfigK || lgConfigK > maxLgConfigK {
		return 0, errConfigf("lgConfigK must be between %d and %d inclusive, got %d", minLgConfigK, maxLgConfigK, lgConfigK)
	}
	return lgConfigK, nil
}

func errConfigf(format string, args ...any) error {
	return wrapf(ErrConfig, format, args...)
}

func errFormatf(format string, args ...any) error {
	return wrapf(ErrFormat, format, args...)
}

func errCapacityf(format string, args ...any) error {
	return wrapf(ErrCapacity, format, args...)
}
