package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultEnvPrefix is the prefix of the environment variables ApplyEnv
// reads.
const DefaultEnvPrefix = "PIECETREE_"

// envSetting maps a variable name, without prefix, to its setting.
type envSetting struct {
	name string
	path string
	set  func(c *Config, v string) error
}

func sizeSetter(field func(*Config) *ByteSize) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := ParseByteSize(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetter(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

var envSettings = []envSetting{
	{"STORAGE_MODE", "storage.mode", stringSetter(func(c *Config) *string { return &c.Storage.Mode })},
	{"MMAP_THRESHOLD", "storage.mmap_threshold", sizeSetter(func(c *Config) *ByteSize { return &c.Storage.MmapThreshold })},
	{"MAX_PIECE_SIZE", "storage.max_piece_size", sizeSetter(func(c *Config) *ByteSize { return &c.Storage.MaxPieceSize })},
	{"FIRST_BUCKET_SIZE", "storage.first_bucket_size", sizeSetter(func(c *Config) *ByteSize { return &c.Storage.FirstBucketSize })},
	{"PAGE_SIZE", "storage.page_size", sizeSetter(func(c *Config) *ByteSize { return &c.Storage.PageSize })},
	{"PAGE_CACHE_SIZE", "storage.page_cache_size", intSetter(func(c *Config) *int { return &c.Storage.PageCacheSize })},
	{"HISTORY_MAX_ENTRIES", "history.max_entries", intSetter(func(c *Config) *int { return &c.History.MaxEntries })},
	{"HISTORY_MAX_CHECKPOINTS", "history.max_checkpoints", intSetter(func(c *Config) *int { return &c.History.MaxCheckpoints })},
	{"LOG_LEVEL", "log.level", stringSetter(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_PREFIX", "log.prefix", stringSetter(func(c *Config) *string { return &c.Log.Prefix })},
	{"SEARCH_CASE_INSENSITIVE", "search.case_insensitive", func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Search.CaseInsensitive = b
		return nil
	}},
}

// ApplyEnv overrides settings from environment variables named prefix
// followed by the setting, such as PIECETREE_MAX_PIECE_SIZE. An empty
// prefix selects DefaultEnvPrefix. Empty values are treated as set.
func (c *Config) ApplyEnv(prefix string) error {
	return c.applyEnv(prefix, os.LookupEnv)
}

func (c *Config) applyEnv(prefix string, lookup func(string) (string, bool)) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	for _, s := range envSettings {
		name := prefix + s.name
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := s.set(c, v); err != nil {
			return errors.Wrapf(err, "%s (%s)", name, s.path)
		}
	}
	return nil
}

// EnvNames returns the variable names ApplyEnv reads for prefix.
func EnvNames(prefix string) []string {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	names := make([]string, len(envSettings))
	for i, s := range envSettings {
		names[i] = prefix + s.name
	}
	return names
}
