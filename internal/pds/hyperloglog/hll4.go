package hyperloglog

// hll4AuxToken marks a nibble whose true value could not fit in 4 bits; the
// real value is looked up in the auxiliary table instead (spec section 4.7).
const hll4AuxToken = 0xF

func hll4Bytes(numSlots int) int {
	return (numSlots + 1) / 2
}

// hll4Get reads the nibble stored for idx. Slot 2i occupies the low nibble
// of byte i; slot 2i+1 occupies the high nibble.
func hll4Get(regs []byte, idx int) int {
	b := regs[idx/2]
	if idx%2 == 0 {
		return int(b & 0x0F)
	}
	return int(b >> 4)
}

func hll4Set(regs []byte, idx, nibble int) {
	b := regs[idx/2]
	if idx%2 == 0 {
		regs[idx/2] = (b & 0xF0) | byte(nibble&0x0F)
	} else {
		regs[idx/2] = (b & 0x0F) | byte((nibble&0x0F)<<4)
	}
}

// hll4TrueValue returns the true register value at idx: the stored nibble
// plus curMin, or the auxiliary table's value when the nibble is the
// overflow token.
func (h *hllArray) hll4TrueValue(idx int) int {
	nib := hll4Get(h.regs, idx)
	if nib != hll4AuxToken {
		return h.curMin + nib
	}
	if h.aux == nil {
		return h.curMin
	}
	return h.aux.get(idx)
}

// hll4SetTrueValue stores newTrue at idx, routing through the auxiliary
// table when it would overflow the nibble. It does not rebase; couponUpdate
// calls hll4Rebase once every register has advanced past curMin.
func (h *hllArray) hll4SetTrueValue(idx, newTrue int) {
	delta := newTrue - h.curMin
	if delta <= 14 {
		if hll4Get(h.regs, idx) == hll4AuxToken && h.aux != nil {
			h.aux.remove(idx)
		}
		hll4Set(h.regs, idx, delta)
		return
	}
	if h.aux == nil {
		h.aux = newAuxHashMap(h.cfg.lgConfigK)
	}
	hll4Set(h.regs, idx, hll4AuxToken)
	h.aux.put(idx, newTrue)
}

// hll4Rebase is invoked when numAtCurMin reaches zero: every register has a
// stored value strictly greater than 0, so curMin can rise. It rescans every
// register, finds the new minimum true value and its count, and rewrites
// every nibble relative to the new curMin (spec section 4.6).
func (h *hllArray) hll4Rebase() {
	numSlots := 1 << h.cfg.lgConfigK
	newMin := 64
	for i := 0; i < numSlots; i++ {
		v := h.hll4TrueValue(i)
		if v < newMin {
			newMin = v
		}
	}
	if newMin <= h.curMin {
		return
	}
	var newAux *auxHashMap
	count := 0
	for i := 0; i < numSlots; i++ {
		v := h.hll4TrueValue(i)
		delta := v - newMin
		if v == newMin {
			count++
		}
		if delta <= 14 {
			hll4Set(h.regs, i, delta)
			continue
		}
		if newAux == nil {
			newAux = newAuxHashMap(h.cfg.lgConfigK)
		}
		hll4Set(h.regs, i, hll4AuxToken)
		newAux.put(i, v)
	}
	h.curMin = newMin
	h.numAtCurMin = count
	h.aux = newAux
}
