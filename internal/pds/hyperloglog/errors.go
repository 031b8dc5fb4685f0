package hyperloglog

import (
	"errors"
	"fmt"
)

// Sentinel error classes. Every error this package returns, except an mmap
// failure from NewOffHeapBuffer (which wraps the underlying system error),
// is or wraps exactly one of these via fmt.Errorf("%w: ...", ...), so
// callers can test with errors.Is regardless of the specific message
// attached.
var (
	// ErrConfig is returned for out-of-range construction parameters, e.g. an
	// lgConfigK outside [4, 21].
	ErrConfig = errors.New("hyperloglog: invalid configuration")

	// ErrCapacity is returned when a caller-supplied buffer is smaller than
	// the declared or required serialization size.
	ErrCapacity = errors.New("hyperloglog: buffer capacity too small")

	// ErrFormat is returned when a serialized image is corrupt: bad family
	// id, unsupported serial version, unrecognized mode or type, or an
	// inconsistent header field. Truncated data is reported as ErrCapacity.
	ErrFormat = errors.New("hyperloglog: corrupt or unsupported serialized image")

	// ErrReadOnly is returned when a mutation is attempted against a sketch
	// wrapped over a read-only buffer.
	ErrReadOnly = errors.New("hyperloglog: write attempted on a read-only buffer")
)

// wrapf wraps a sentinel error class with a formatted message, the common
// shape used throughout this package so callers can errors.Is against the
// class while still getting a specific message.
func wrapf(class error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", class, fmt.Sprintf(format, args...))
}
