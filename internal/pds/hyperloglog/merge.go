package hyperloglog

// mergeInto implements the union engine. The result always takes the
// smaller of the two operands' lgConfigK values, folding the larger-K
// operand's registers down by index modulo the target K; a smaller sketch
// has already discarded the address bits a larger lgConfigK target would
// need to upsample cleanly, so downsampling is the only well-defined
// direction (see DESIGN.md).
//
// Both operands are replayed coupon-by-coupon (or register-by-register, for
// an HLL-mode operand) into a fresh destination built at the target K, so
// the destination naturally passes back through LIST -> SET -> HLL exactly
// as a live sketch would. HIP is not meaningful across a merge, so the
// result is always marked out-of-order, which routes getLowerBound/
// getUpperBound to the non-HIP relative error factor.
func mergeInto(a, b sketchState, tgtHllType TgtHllType) (sketchState, error) {
	targetLgK := minInt(a.getLgConfigK(), b.getLgConfigK())

	var dest sketchState = newListState(sketchConfig{lgConfigK: targetLgK, tgtHllType: tgtHllType})

	dest, err := replayInto(dest, a, targetLgK)
	if err != nil {
		return nil, err
	}
	dest, err = replayInto(dest, b, targetLgK)
	if err != nil {
		return nil, err
	}
	dest.setOutOfOrder(true)
	return dest, nil
}

// replayInto applies every element of src to dest as an update, folding HLL
// register indices down to targetLgK bits when src's own lgConfigK is
// larger. LIST/SET coupons already carry their full 26-bit address and need
// no folding; registerIndex recomputes correctly against whatever K the
// destination ultimately settles on.
func replayInto(dest sketchState, src sketchState, targetLgK int) (sketchState, error) {
	it := src.iterator()
	mask := uint32(1<<uint(targetLgK)) - 1

	switch cp := it.(type) {
	case *couponPairIterator:
		for cp.nextValid() {
			next, err := dest.couponUpdate(cp.coupon())
			if err != nil {
				return nil, err
			}
			dest = next
		}
	default:
		for it.nextValid() {
			foldedIdx := uint32(it.index()) & mask
			val := uint32(it.value())
			coupon := (val << addressBits) | foldedIdx
			next, err := dest.couponUpdate(coupon)
			if err != nil {
				return nil, err
			}
			dest = next
		}
	}
	return dest, nil
}
