package storage

import "github.com/cockroachdb/errors"

// Errors returned by the storage layer.
var (
	// ErrOutOfRange indicates a byte range outside a buffer.
	ErrOutOfRange = errors.New("storage: range out of bounds")

	// ErrClosed indicates access to a released buffer.
	ErrClosed = errors.New("storage: buffer closed")

	// ErrConcurrentWriter indicates the add buffer length was advanced by
	// something other than its writer.
	ErrConcurrentWriter = errors.New("storage: concurrent add buffer writer")

	// ErrMmapUnsupported indicates memory mapping is not available on this
	// platform.
	ErrMmapUnsupported = errors.New("storage: mmap not supported")

	// ErrUnknownMode indicates an unrecognised storage mode name.
	ErrUnknownMode = errors.New("storage: unknown mode")
)

func checkRange(off, n, size uint64) error {
	if off > size || n > size-off {
		return errors.Wrapf(ErrOutOfRange, "[%d, %d) of %d", off, off+n, size)
	}
	return nil
}
