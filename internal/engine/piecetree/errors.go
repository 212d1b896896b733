package piecetree

import "github.com/cockroachdb/errors"

// Errors returned by piece tree operations.
var (
	// ErrOutOfBounds indicates a position or range beyond the content.
	ErrOutOfBounds = errors.New("piecetree: out of bounds")

	// ErrInvalidRange indicates a range whose start is after its end.
	ErrInvalidRange = errors.New("piecetree: invalid range")

	// ErrClosed indicates use of a closed piece tree.
	ErrClosed = errors.New("piecetree: closed")

	// ErrReleased indicates use of a released snapshot or slice.
	ErrReleased = errors.New("piecetree: released")

	// ErrForeignSnapshot indicates a snapshot taken from another tree.
	ErrForeignSnapshot = errors.New("piecetree: snapshot belongs to another tree")
)

func outOfBounds(pos, length uint64) error {
	return errors.Wrapf(ErrOutOfBounds, "position %d, length %d", pos, length)
}
