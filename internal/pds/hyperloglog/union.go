package hyperloglog

// Union accumulates a running merge of any number of sketches, per spec
// section 6's "separate Union helper that owns the destination sketch". It
// is seeded at construction with the lgConfigK and tgtHllType of its result;
// every sketch passed to Update may itself differ, and the running result
// downsamples to whichever operand ever had the smaller lgConfigK (spec
// section 4.10).
type Union struct {
	state sketchState
}

// NewUnion creates an empty union targeting the given result configuration.
func NewUnion(lgMaxK int, tgtHllType TgtHllType) (*Union, error) {
	lgMaxK, err := checkLgConfigK(lgMaxK)
	if err != nil {
		return nil, err
	}
	return &Union{state: newListState(sketchConfig{lgConfigK: lgMaxK, tgtHllType: tgtHllType})}, nil
}

// Update folds other into the running result.
func (u *Union) Update(other *Sketch) error {
	merged, err := mergeInto(u.state, other.state, u.state.getTgtHllType())
	if err != nil {
		return err
	}
	u.state = merged
	return nil
}

// GetResult returns an independent on-heap copy of the union's current
// state, re-encoded as resultType.
func (u *Union) GetResult(resultType TgtHllType) (*Sketch, error) {
	s := &Sketch{state: u.state}
	return s.CopyAs(resultType)
}
