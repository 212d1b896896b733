//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package storage

import "os"

const mmapSupported = false

func mmapFile(f *os.File, size int64) (Original, error) {
	return nil, ErrMmapUnsupported
}
