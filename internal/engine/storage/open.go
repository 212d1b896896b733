package storage

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode selects an Original implementation.
type Mode int

const (
	// ModeAuto picks memory below the mmap threshold, otherwise mmap,
	// falling back to paged when mapping fails.
	ModeAuto Mode = iota
	// ModeMemory reads the whole file.
	ModeMemory
	// ModeMmap maps the file.
	ModeMmap
	// ModePaged reads pages on demand.
	ModePaged
)

// DefaultMmapThreshold is the file size above which ModeAuto stops
// reading files into memory.
const DefaultMmapThreshold = 16 << 20

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeMemory:
		return "memory"
	case ModeMmap:
		return "mmap"
	case ModePaged:
		return "paged"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "memory", "mem":
		return ModeMemory, nil
	case "mmap":
		return ModeMmap, nil
	case "paged", "page":
		return ModePaged, nil
	}
	return ModeAuto, errors.Wrapf(ErrUnknownMode, "%q", s)
}

// MmapSupported reports whether ModeMmap can work on this platform.
func MmapSupported() bool { return mmapSupported }

// OpenOptions controls OpenFile.
type OpenOptions struct {
	Mode          Mode
	MmapThreshold uint64
	PageSize      uint64
	PageCacheSize int
}

// DefaultOpenOptions returns the options used when none are given.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		Mode:          ModeAuto,
		MmapThreshold: DefaultMmapThreshold,
		PageSize:      DefaultPageSize,
		PageCacheSize: DefaultPageCacheSize,
	}
}

// OpenFile opens path as an Original and reports the mode actually used.
// On error no file descriptor or mapping is left open.
func OpenFile(path string, opts OpenOptions) (Original, Mode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, opts.Mode, errors.Wrapf(err, "open %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, opts.Mode, errors.Wrapf(err, "stat %s", path)
	}
	size := fi.Size()

	mode := opts.Mode
	if mode == ModeAuto {
		switch {
		case uint64(size) < opts.MmapThreshold || !fi.Mode().IsRegular():
			mode = ModeMemory
		case mmapSupported:
			mode = ModeMmap
		default:
			mode = ModePaged
		}
	}

	switch mode {
	case ModeMemory:
		defer f.Close()
		orig, err := ReadAll(f)
		if err != nil {
			return nil, mode, errors.Wrapf(err, "read %s", path)
		}
		return orig, mode, nil

	case ModeMmap:
		orig, err := mmapFile(f, size)
		if err == nil {
			_ = f.Close()
			return orig, mode, nil
		}
		if opts.Mode == ModeMmap {
			_ = f.Close()
			return nil, mode, err
		}
		// Auto mode: mapping failed (special file, exhausted address
		// space), serve the file through pages instead.
		return newPaged(f, f, uint64(size), opts.PageSize, opts.PageCacheSize), ModePaged, nil

	case ModePaged:
		return newPaged(f, f, uint64(size), opts.PageSize, opts.PageCacheSize), mode, nil
	}

	_ = f.Close()
	return nil, mode, errors.Wrapf(ErrUnknownMode, "%d", int(mode))
}
