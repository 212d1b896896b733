// Package config loads piecetree settings from TOML files and PIECETREE_*
// environment variables.
//
// Settings are layered: Default, then a file (LoadFile), then the
// environment (ApplyEnv). Validate checks the result, and TreeOptions and
// Logger turn it into the options the engine packages accept.
//
// Example file:
//
//	[storage]
//	mode = "auto"
//	mmap_threshold = "16MiB"
//	max_piece_size = "64KiB"
//
//	[history]
//	max_entries = 500
//
//	[log]
//	level = "debug"
package config
