package config

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ByteSize is a size in bytes. In files and environment variables it is
// written as a plain integer or with a binary unit suffix: "512", "64KiB",
// "16MiB", "1GiB". "K", "KB", "M", "MB", "G" and "GB" are accepted as the
// same binary units.
type ByteSize uint64

var sizeUnits = []struct {
	suffix string
	shift  uint
}{
	{"kib", 10}, {"mib", 20}, {"gib", 30},
	{"kb", 10}, {"mb", 20}, {"gb", 30},
	{"k", 10}, {"m", 20}, {"g", 30},
	{"b", 0},
}

// ParseByteSize parses a size.
func ParseByteSize(s string) (ByteSize, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "_", "")
	var shift uint
	for _, u := range sizeUnits {
		if strings.HasSuffix(v, u.suffix) {
			v, shift = strings.TrimSpace(strings.TrimSuffix(v, u.suffix)), u.shift
			break
		}
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSize, "%q", s)
	}
	if shift > 0 && n > (^uint64(0))>>shift {
		return 0, errors.Wrapf(ErrInvalidSize, "%q overflows", s)
	}
	return ByteSize(n << shift), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = n
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// String formats b with the largest unit that divides it.
func (b ByteSize) String() string {
	n := uint64(b)
	switch {
	case n == 0:
		return "0"
	case n%(1<<30) == 0:
		return strconv.FormatUint(n>>30, 10) + "GiB"
	case n%(1<<20) == 0:
		return strconv.FormatUint(n>>20, 10) + "MiB"
	case n%(1<<10) == 0:
		return strconv.FormatUint(n>>10, 10) + "KiB"
	default:
		return strconv.FormatUint(n, 10)
	}
}
