//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package storage

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const mmapSupported = true

type mmapOriginal struct {
	data []byte
}

// mmapFile maps f read-only. The mapping outlives f, which the caller may
// close once this returns.
func mmapFile(f *os.File, size int64) (Original, error) {
	if size == 0 {
		return &memOriginal{}, nil
	}
	if int64(int(size)) != size {
		return nil, errors.Newf("file %s too large to map (%d bytes)", f.Name(), size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", f.Name())
	}
	// Piece reads jump around the file; readahead is wasted.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	return &mmapOriginal{data: data}, nil
}

func (m *mmapOriginal) Len() uint64 { return uint64(len(m.data)) }

func (m *mmapOriginal) Slice(off, n uint64) ([]byte, error) {
	if m.data == nil {
		return nil, ErrClosed
	}
	if err := checkRange(off, n, uint64(len(m.data))); err != nil {
		return nil, err
	}
	return m.data[off : off+n : off+n], nil
}

func (m *mmapOriginal) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return errors.Wrap(unix.Munmap(data), "munmap")
}
