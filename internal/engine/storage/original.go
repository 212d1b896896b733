package storage

import (
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Original is read-only byte storage for the content a document was
// opened with.
type Original interface {
	// Len returns the size in bytes.
	Len() uint64
	// Slice returns n bytes starting at off. The result must not be
	// modified; it may alias the underlying storage.
	Slice(off, n uint64) ([]byte, error)
	// Close releases any file or mapping held.
	Close() error
}

type memOriginal struct {
	data []byte
}

// FromBytes returns an in-memory Original over b. The caller must not
// modify b afterwards.
func FromBytes(b []byte) Original {
	return &memOriginal{data: b}
}

// ReadAll materializes r into an in-memory Original.
func ReadAll(r io.Reader) (Original, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read original content")
	}
	return &memOriginal{data: data}, nil
}

func (m *memOriginal) Len() uint64 { return uint64(len(m.data)) }

func (m *memOriginal) Slice(off, n uint64) ([]byte, error) {
	if err := checkRange(off, n, uint64(len(m.data))); err != nil {
		return nil, err
	}
	return m.data[off : off+n : off+n], nil
}

func (m *memOriginal) Close() error { return nil }

// Shared is a reference-counted Original. It starts with one reference.
type Shared struct {
	orig Original
	refs atomic.Int32
}

// Share wraps o with a reference count of one.
func Share(o Original) *Shared {
	s := &Shared{orig: o}
	s.refs.Store(1)
	return s
}

// Acquire adds a reference and returns s.
func (s *Shared) Acquire() *Shared {
	s.refs.Add(1)
	return s
}

// Release drops a reference, closing the Original when none remain.
func (s *Shared) Release() error {
	switch n := s.refs.Add(-1); {
	case n == 0:
		return s.orig.Close()
	case n < 0:
		return errors.Wrap(ErrClosed, "release")
	}
	return nil
}

// Refs returns the current reference count.
func (s *Shared) Refs() int32 { return s.refs.Load() }

// Len returns the size of the wrapped Original.
func (s *Shared) Len() uint64 { return s.orig.Len() }

// Slice reads from the wrapped Original.
func (s *Shared) Slice(off, n uint64) ([]byte, error) {
	if s.refs.Load() <= 0 {
		return nil, ErrClosed
	}
	return s.orig.Slice(off, n)
}
