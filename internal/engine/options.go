package engine

import (
	"github.com/dshills/piecetree/internal/engine/history"
	"github.com/dshills/piecetree/internal/engine/piecetree"
	"github.com/dshills/piecetree/internal/logging"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
	DefaultMaxCheckpoints = 64
)

type options struct {
	tree           []piecetree.Option
	maxUndoEntries int
	maxCheckpoints int
	readOnly       bool
	watch          bool
	logger         *logging.Logger
}

func defaultOptions() options {
	return options{
		maxUndoEntries: DefaultMaxUndoEntries,
		maxCheckpoints: DefaultMaxCheckpoints,
		logger:         logging.Discard(),
	}
}

// Option configures a Document during creation.
type Option func(*options)

// WithTreeOptions passes options through to the underlying piece tree.
func WithTreeOptions(opts ...piecetree.Option) Option {
	return func(o *options) {
		o.tree = append(o.tree, opts...)
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(o *options) {
		if max > 0 {
			o.maxUndoEntries = max
		}
	}
}

// WithMaxCheckpoints bounds the number of named checkpoints kept; the
// oldest are dropped first.
func WithMaxCheckpoints(max int) Option {
	return func(o *options) {
		if max > 0 {
			o.maxCheckpoints = max
		}
	}
}

// WithReadOnly creates a read-only document.
// Edits return ErrReadOnly.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// WithWatch makes a file-backed document watch its source file for
// outside modification. See Document.SourceChanged.
func WithWatch() Option {
	return func(o *options) {
		o.watch = true
	}
}

// WithLogger sets the logger. The piece tree logs through it too.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
