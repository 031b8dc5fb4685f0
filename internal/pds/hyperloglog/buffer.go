package hyperloglog

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// Buffer is the indexed byte/short/int/long/double read-write abstraction
// every on-disk and off-heap sketch representation is built on. It is
// implemented by two backends: a managed heap byte slice, and an off-heap
// region obtained from an anonymous mmap with a fixed base address. A
// read-only Buffer rejects every mutating call with ErrReadOnly.
type Buffer interface {
	Capacity() int
	ReadOnly() bool

	GetByte(offset int) byte
	PutByte(offset int, v byte) error

	GetUint16(offset int) uint16
	PutUint16(offset int, v uint16) error

	GetUint32(offset int) uint32
	PutUint32(offset int, v uint32) error

	GetUint64(offset int) uint64
	PutUint64(offset int, v uint64) error

	GetFloat64(offset int) float64
	PutFloat64(offset int, v float64) error

	Clear(offset, length int) error
	CopyFrom(offset int, src []byte) error
	CopyInto(offset int, dst []byte)

	// Bytes exposes the entire backing region, heap or off-heap, as a
	// []byte view. Serialization helpers use this to assemble the final
	// compact image in one pass.
	Bytes() []byte
}

type sliceBuffer struct {
	data     []byte
	readOnly bool
	offHeap  bool
	release  func() error
}

// NewHeapBuffer wraps an existing managed byte slice as a writable Buffer.
func NewHeapBuffer(data []byte) Buffer {
	return &sliceBuffer{data: data}
}

// NewReadOnlyBuffer wraps an existing byte slice (heap or otherwise) as a
// read-only Buffer. Any Put*/Clear/CopyFrom call returns ErrReadOnly.
func NewReadOnlyBuffer(data []byte) Buffer {
	return &sliceBuffer{data: data, readOnly: true}
}

// NewOffHeapBuffer allocates size bytes of anonymous memory outside the Go
// heap via mmap and returns it as a writable Buffer with a fixed base
// address. The mapping is not released by the garbage collector; callers
// release it by type-asserting to io.Closer and calling Close.
func NewOffHeapBuffer(size int) (Buffer, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("hyperloglog: mmap off-heap buffer of %d bytes: %w", size, err)
	}
	return &sliceBuffer{
		data:    region,
		offHeap: true,
		release: func() error { return unix.Munmap(region) },
	}, nil
}

// Close releases the off-heap mapping, if any. It is a no-op for heap
// buffers.
func (b *sliceBuffer) Close() error {
	if b.release != nil {
		return b.release()
	}
	return nil
}

func (b *sliceBuffer) Capacity() int { return len(b.data) }
func (b *sliceBuffer) ReadOnly() bool { return b.readOnly }
func (b *sliceBuffer) Bytes() []byte  { return b.data }

func (b *sliceBuffer) GetByte(offset int) byte { return b.data[offset] }

func (b *sliceBuffer) PutByte(offset int, v byte) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data[offset] = v
	return nil
}

func (b *sliceBuffer) GetUint16(offset int) uint16 {
	return binary.LittleEndian.Uint16(b.data[offset:])
}

func (b *sliceBuffer) PutUint16(offset int, v uint16) error {
	if b.readOnly {
		return ErrReadOnly
	}
	binary.LittleEndian.PutUint16(b.data[offset:], v)
	return nil
}

func (b *sliceBuffer) GetUint32(offset int) uint32 {
	return binary.LittleEndian.Uint32(b.data[offset:])
}

func (b *sliceBuffer) PutUint32(offset int, v uint32) error {
	if b.readOnly {
		return ErrReadOnly
	}
	binary.LittleEndian.PutUint32(b.data[offset:], v)
	return nil
}

func (b *sliceBuffer) GetUint64(offset int) uint64 {
	return binary.LittleEndian.Uint64(b.data[offset:])
}

func (b *sliceBuffer) PutUint64(offset int, v uint64) error {
	if b.readOnly {
		return ErrReadOnly
	}
	binary.LittleEndian.PutUint64(b.data[offset:], v)
	return nil
}

func (b *sliceBuffer) GetFloat64(offset int) float64 {
	return math.Float64frombits(b.GetUint64(offset))
}

func (b *sliceBuffer) PutFloat64(offset int, v float64) error {
	return b.PutUint64(offset, math.Float64bits(v))
}

func (b *sliceBuffer) Clear(offset, length int) error {
	if b.readOnly {
		return ErrReadOnly
	}
	clear(b.data[offset : offset+length])
	return nil
}

func (b *sliceBuffer) CopyFrom(offset int, src []byte) error {
	if b.readOnly {
		return ErrReadOnly
	}
	copy(b.data[offset:], src)
	return nil
}

func (b *sliceBuffer) CopyInto(offset int, dst []byte) {
	copy(dst, b.data[offset:offset+len(dst)])
}
