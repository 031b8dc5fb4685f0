package hyperloglog

// HLL images have no compact/updatable distinction: the register array is
// always stored at full capacity and the auxiliary table is written the same
// way in either form, so both entry points share one writer.

func (h *hllArray) auxEntryCount() int {
	if h.aux == nil {
		return 0
	}
	return h.aux.count
}

func (h *hllArray) toCompactBytes() ([]byte, error) { return h.marshal() }

func (h *hllArray) toUpdatableBytes() ([]byte, error) { return h.marshal() }

func (h *hllArray) updatableSerializationBytes() int {
	return hllHeaderBytes + len(h.regs) + h.auxEntryCount()*4
}

func (h *hllArray) marshal() ([]byte, error) {
	n := h.updatableSerializationBytes()
	buf := NewHeapBuffer(make([]byte, n))

	flags := byte(0)
	if h.isEmpty() {
		flags |= flagEmpty
	}
	if h.outOfOrder {
		flags |= flagOutOfOrder
	}
	p := preamble{
		curMode:     curModeHll,
		lgConfigK:   h.cfg.lgConfigK,
		tgtHllType:  h.cfg.tgtHllType,
		flags:       flags,
		curMin:      h.curMin,
		numAtCurMin: h.numAtCurMin,
		hipAccum:    h.hipAccum,
		kxq0:        h.kxq0,
		kxq1:        h.kxq1,
		auxCount:    h.auxEntryCount(),
	}
	if err := writePreamble(buf, p); err != nil {
		return nil, err
	}

	off := hllHeaderBytes
	if err := buf.CopyFrom(off, h.regs); err != nil {
		return nil, err
	}
	off += len(h.regs)

	if h.aux != nil {
		var writeErr error
		h.aux.forEach(func(index, value int) {
			if writeErr != nil {
				return
			}
			word := uint32(value<<h.cfg.lgConfigK) | uint32(index)
			writeErr = buf.PutUint32(off, word)
			off += 4
		})
		if writeErr != nil {
			return nil, writeErr
		}
	}
	return buf.Bytes(), nil
}

// readHllArray decodes an HLL-mode image previously written by marshal.
func readHllArray(p preamble, data []byte) (*hllArray, error) {
	k := numRegisters(p.lgConfigK)
	regsLen := regBytesFor(p.tgtHllType, k)
	need := hllHeaderBytes + regsLen + p.auxCount*4
	if len(data) < need {
		return nil, errCapacityf("HLL image needs %d bytes, have %d", need, len(data))
	}

	h := &hllArray{
		cfg:         sketchConfig{lgConfigK: p.lgConfigK, tgtHllType: p.tgtHllType},
		curMin:      p.curMin,
		numAtCurMin: p.numAtCurMin,
		hipAccum:    p.hipAccum,
		kxq0:        p.kxq0,
		kxq1:        p.kxq1,
		outOfOrder:  p.flags&flagOutOfOrder != 0,
		regs:        make([]byte, regsLen),
	}
	off := hllHeaderBytes
	h.regs = append(h.regs[:0], data[off:off+regsLen]...)
	off += regsLen

	if p.auxCount > 0 {
		h.aux = newAuxHashMap(p.lgConfigK)
		for i := 0; i < p.auxCount; i++ {
			word := le32(data[off : off+4])
			off += 4
			idx := int(word & ((1 << uint(p.lgConfigK)) - 1))
			val := int(word >> uint(p.lgConfigK))
			h.aux.put(idx, val)
		}
	}
	return h, nil
}
