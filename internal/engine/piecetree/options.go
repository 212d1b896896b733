package piecetree

import (
	"github.com/dshills/piecetree/internal/engine/storage"
	"github.com/dshills/piecetree/internal/logging"
)

// DefaultMaxPieceSize caps the pieces the original content is cut into.
const DefaultMaxPieceSize = 64 << 10

// Option configures a PieceTree during creation.
type Option func(*options)

type options struct {
	open         storage.OpenOptions
	maxPieceSize uint64
	firstBucket  uint64
	logger       *logging.Logger
}

func defaultOptions() options {
	return options{
		open:         storage.DefaultOpenOptions(),
		maxPieceSize: DefaultMaxPieceSize,
		firstBucket:  storage.DefaultFirstBucketSize,
		logger:       logging.Discard(),
	}
}

// WithLogger sets the logger used for storage decisions.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxPieceSize sets the largest piece the original content is cut
// into.
func WithMaxPieceSize(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPieceSize = n
		}
	}
}

// WithFirstBucketSize sets the capacity of the first add buffer bucket.
func WithFirstBucketSize(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.firstBucket = n
		}
	}
}

// WithStorageMode selects how Open backs the original content.
func WithStorageMode(m storage.Mode) Option {
	return func(o *options) {
		o.open.Mode = m
	}
}

// WithMmapThreshold sets the file size from which Open maps files in
// auto mode.
func WithMmapThreshold(n uint64) Option {
	return func(o *options) {
		o.open.MmapThreshold = n
	}
}

// WithPageSize sets the page size of paged storage.
func WithPageSize(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.open.PageSize = n
		}
	}
}

// WithPageCacheSize sets how many pages paged storage keeps in memory.
func WithPageCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.open.PageCacheSize = n
		}
	}
}
