package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/piecetree"
)

// Errors returned by Document operations.
var (
	// ErrReadOnly indicates an edit on a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrClosed indicates use of a closed document.
	ErrClosed = piecetree.ErrClosed

	// ErrMarkNotFound indicates an unknown or removed mark.
	ErrMarkNotFound = errors.New("mark not found")

	// ErrNotFound indicates a search without a match.
	ErrNotFound = errors.New("pattern not found")

	// ErrInvalidPattern indicates an empty search pattern, or a
	// case-insensitive one containing non-ASCII bytes.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrNoSource indicates a file operation on a document that was not
	// opened from a file.
	ErrNoSource = errors.New("document has no source file")
)
