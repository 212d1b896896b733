package config

import (
	"io"
	"os"

	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/engine/piecetree"
	"github.com/dshills/piecetree/internal/engine/storage"
	"github.com/dshills/piecetree/internal/logging"
)

// Config holds all piecetree settings.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
	Search  SearchConfig  `toml:"search"`
}

// StorageConfig controls how content is stored.
type StorageConfig struct {
	// Mode is one of "auto", "memory", "mmap" and "paged".
	Mode            string   `toml:"mode"`
	MmapThreshold   ByteSize `toml:"mmap_threshold"`
	MaxPieceSize    ByteSize `toml:"max_piece_size"`
	FirstBucketSize ByteSize `toml:"first_bucket_size"`
	PageSize        ByteSize `toml:"page_size"`
	// PageCacheSize is a number of pages.
	PageCacheSize int `toml:"page_cache_size"`
}

// HistoryConfig controls undo history.
type HistoryConfig struct {
	MaxEntries     int `toml:"max_entries"`
	MaxCheckpoints int `toml:"max_checkpoints"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	CaseInsensitive bool `toml:"case_insensitive"`
}

// Default returns the built-in settings.
func Default() *Config {
	open := storage.DefaultOpenOptions()
	return &Config{
		Storage: StorageConfig{
			Mode:            open.Mode.String(),
			MmapThreshold:   ByteSize(open.MmapThreshold),
			MaxPieceSize:    piecetree.DefaultMaxPieceSize,
			FirstBucketSize: storage.DefaultFirstBucketSize,
			PageSize:        ByteSize(open.PageSize),
			PageCacheSize:   open.PageCacheSize,
		},
		History: HistoryConfig{
			MaxEntries:     engine.DefaultMaxUndoEntries,
			MaxCheckpoints: engine.DefaultMaxCheckpoints,
		},
		Log: LogConfig{
			Level:  logging.LevelWarn.String(),
			Prefix: "ptree",
		},
	}
}

// Validate checks every setting and returns the first failure as a
// *ValidationError.
func (c *Config) Validate() error {
	if _, err := storage.ParseMode(c.Storage.Mode); err != nil {
		return &ValidationError{Path: "storage.mode", Value: c.Storage.Mode, Message: "want auto, memory, mmap or paged"}
	}
	if c.StorageMode() == storage.ModeMmap && !storage.MmapSupported() {
		return &ValidationError{Path: "storage.mode", Value: c.Storage.Mode, Message: "mmap is not supported on this platform"}
	}
	if c.Storage.MaxPieceSize == 0 {
		return &ValidationError{Path: "storage.max_piece_size", Value: c.Storage.MaxPieceSize, Message: "must be positive"}
	}
	if c.Storage.FirstBucketSize == 0 {
		return &ValidationError{Path: "storage.first_bucket_size", Value: c.Storage.FirstBucketSize, Message: "must be positive"}
	}
	if ps := uint64(c.Storage.PageSize); ps == 0 || ps&(ps-1) != 0 {
		return &ValidationError{Path: "storage.page_size", Value: c.Storage.PageSize, Message: "must be a power of two"}
	}
	if c.Storage.PageCacheSize < 1 {
		return &ValidationError{Path: "storage.page_cache_size", Value: c.Storage.PageCacheSize, Message: "must be at least 1"}
	}
	if c.History.MaxEntries < 1 {
		return &ValidationError{Path: "history.max_entries", Value: c.History.MaxEntries, Message: "must be at least 1"}
	}
	if c.History.MaxCheckpoints < 1 {
		return &ValidationError{Path: "history.max_checkpoints", Value: c.History.MaxCheckpoints, Message: "must be at least 1"}
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "want debug, info, warn, error or off"}
	}
	return nil
}

// StorageMode returns the parsed storage mode. It is ModeAuto for an
// invalid name; call Validate first.
func (c *Config) StorageMode() storage.Mode {
	m, _ := storage.ParseMode(c.Storage.Mode)
	return m
}

// TreeOptions returns the piece tree options for the storage settings.
func (c *Config) TreeOptions() []piecetree.Option {
	return []piecetree.Option{
		piecetree.WithStorageMode(c.StorageMode()),
		piecetree.WithMmapThreshold(uint64(c.Storage.MmapThreshold)),
		piecetree.WithMaxPieceSize(uint64(c.Storage.MaxPieceSize)),
		piecetree.WithFirstBucketSize(uint64(c.Storage.FirstBucketSize)),
		piecetree.WithPageSize(uint64(c.Storage.PageSize)),
		piecetree.WithPageCacheSize(c.Storage.PageCacheSize),
	}
}

// DocumentOptions returns the engine options for all settings, logging
// through log.
func (c *Config) DocumentOptions(log *logging.Logger) []engine.Option {
	return []engine.Option{
		engine.WithTreeOptions(c.TreeOptions()...),
		engine.WithMaxUndoEntries(c.History.MaxEntries),
		engine.WithMaxCheckpoints(c.History.MaxCheckpoints),
		engine.WithLogger(log),
	}
}

// Logger builds a logger for the log settings writing to w, or to stderr
// when w is nil.
func (c *Config) Logger(w io.Writer) *logging.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.New(logging.Config{Level: level, Output: w, Prefix: c.Log.Prefix})
}
