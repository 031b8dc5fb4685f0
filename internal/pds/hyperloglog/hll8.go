package hyperloglog

func hll8Bytes(numSlots int) int {
	return numSlots
}

func hll8Get(regs []byte, idx int) int {
	return int(regs[idx])
}

func hll8Set(regs []byte, idx, value int) {
	regs[idx] = byte(value)
}
