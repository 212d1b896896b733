package storage

import (
	"container/list"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

// Default paging parameters.
const (
	DefaultPageSize      = 64 << 10
	DefaultPageCacheSize = 256
)

type page struct {
	index uint64
	data  []byte
}

// pagedOriginal reads fixed-size pages on demand and keeps the most
// recently used ones. Pages are never modified once loaded, so slices
// handed out stay valid after eviction.
type pagedOriginal struct {
	r        io.ReaderAt
	closer   io.Closer
	size     uint64
	pageSize uint64
	maxPages int

	mu    sync.Mutex
	pages map[uint64]*list.Element
	lru   *list.List
}

func newPaged(r io.ReaderAt, closer io.Closer, size, pageSize uint64, maxPages int) *pagedOriginal {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultPageCacheSize
	}
	return &pagedOriginal{
		r:        r,
		closer:   closer,
		size:     size,
		pageSize: pageSize,
		maxPages: maxPages,
		pages:    make(map[uint64]*list.Element),
		lru:      list.New(),
	}
}

// OpenPaged opens path as a paged Original.
func OpenPaged(path string, pageSize uint64, maxPages int) (Original, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return newPaged(f, f, uint64(fi.Size()), pageSize, maxPages), nil
}

func (p *pagedOriginal) Len() uint64 { return p.size }

func (p *pagedOriginal) Slice(off, n uint64) ([]byte, error) {
	if err := checkRange(off, n, p.size); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	first, last := off/p.pageSize, (off+n-1)/p.pageSize
	if first == last {
		pg, err := p.page(first)
		if err != nil {
			return nil, err
		}
		rel := off - first*p.pageSize
		return pg[rel : rel+n : rel+n], nil
	}

	out := make([]byte, 0, n)
	for idx := first; idx <= last; idx++ {
		pg, err := p.page(idx)
		if err != nil {
			return nil, err
		}
		base := idx * p.pageSize
		lo, hi := uint64(0), uint64(len(pg))
		if off > base {
			lo = off - base
		}
		if end := off + n; end < base+hi {
			hi = end - base
		}
		out = append(out, pg[lo:hi]...)
	}
	return out, nil
}

func (p *pagedOriginal) page(idx uint64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.pages[idx]; ok {
		p.lru.MoveToFront(el)
		return el.Value.(*page).data, nil
	}

	start := idx * p.pageSize
	size := p.pageSize
	if start+size > p.size {
		size = p.size - start
	}
	buf := make([]byte, size)
	n, err := p.r.ReadAt(buf, int64(start))
	if uint64(n) < size {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "read page %d", idx)
	}

	p.pages[idx] = p.lru.PushFront(&page{index: idx, data: buf})
	for p.lru.Len() > p.maxPages {
		el := p.lru.Back()
		p.lru.Remove(el)
		delete(p.pages, el.Value.(*page).index)
	}
	return buf, nil
}

// cached returns the number of resident pages.
func (p *pagedOriginal) cached() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lru.Len()
}

func (p *pagedOriginal) Close() error {
	p.mu.Lock()
	p.pages = make(map[uint64]*list.Element)
	p.lru.Init()
	p.mu.Unlock()
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
