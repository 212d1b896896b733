package storage

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultFirstBucketSize is the capacity of the first add buffer bucket.
const DefaultFirstBucketSize = 64 << 10

// Publish retry parameters.
const (
	publishAttempts   = 8
	publishMinBackoff = time.Microsecond
	publishMaxBackoff = 200 * time.Microsecond
)

type bucket struct {
	start uint64
	data  []byte
}

// addStore is the state shared between the writer and its readers. The
// bucket list is replaced wholesale on growth; length only moves forward.
type addStore struct {
	buckets atomic.Pointer[[]*bucket]
	length  atomic.Uint64
}

// AddWriter appends to an add buffer. There must be exactly one writer per
// buffer; it is not safe for concurrent use.
type AddWriter struct {
	store *addStore
	cur   *bucket
	used  uint64
	end   uint64
	first uint64

	attempts   int
	minBackoff time.Duration
}

// NewAddBuffer returns the writer of an empty add buffer whose first
// bucket holds firstBucket bytes.
func NewAddBuffer(firstBucket uint64) *AddWriter {
	if firstBucket == 0 {
		firstBucket = DefaultFirstBucketSize
	}
	st := &addStore{}
	st.buckets.Store(&[]*bucket{})
	return &AddWriter{
		store:      st,
		first:      firstBucket,
		attempts:   publishAttempts,
		minBackoff: publishMinBackoff,
	}
}

// Len returns the number of bytes written.
func (w *AddWriter) Len() uint64 { return w.end }

// Reader returns a reader sharing this buffer.
func (w *AddWriter) Reader() *AddReader { return &AddReader{store: w.store} }

// Append writes p and returns its offset. fresh reports whether p was
// placed at the start of a newly allocated bucket, in which case p is not
// contiguous in memory with earlier writes even when the offsets line up.
func (w *AddWriter) Append(p []byte) (pos uint64, fresh bool, err error) {
	n := uint64(len(p))
	if n == 0 {
		return w.end, false, nil
	}

	if w.cur == nil || w.used+n > uint64(len(w.cur.data)) {
		w.grow(n)
		fresh = true
	}

	pos = w.end
	copy(w.cur.data[w.used:], p)
	if err := w.publish(w.end, w.end+n); err != nil {
		return 0, false, err
	}
	w.used += n
	w.end += n
	return pos, fresh, nil
}

func (w *AddWriter) grow(need uint64) {
	size := w.first
	if w.cur != nil {
		size = 2 * uint64(len(w.cur.data))
	}
	for size < need {
		size *= 2
	}

	b := &bucket{start: w.end, data: make([]byte, size)}
	old := *w.store.buckets.Load()
	next := make([]*bucket, len(old), len(old)+1)
	copy(next, old)
	next = append(next, b)
	w.store.buckets.Store(&next)

	w.cur = b
	w.used = 0
}

// publish makes [old, next) visible to readers. Only this writer moves the
// length, so the swap fails only when the buffer is misused.
func (w *AddWriter) publish(old, next uint64) error {
	delay := w.minBackoff
	for attempt := 0; ; attempt++ {
		if w.store.length.CompareAndSwap(old, next) {
			return nil
		}
		if attempt+1 >= w.attempts {
			return errors.Wrapf(ErrConcurrentWriter,
				"publish %d..%d, length is %d", old, next, w.store.length.Load())
		}
		time.Sleep(delay)
		if delay *= 2; delay > publishMaxBackoff {
			delay = publishMaxBackoff
		}
	}
}

// Buckets returns the number of allocated buckets.
func (w *AddWriter) Buckets() int { return len(*w.store.buckets.Load()) }

// AddReader reads published bytes of an add buffer. It is safe for
// concurrent use and may be copied freely.
type AddReader struct {
	store *addStore
}

// Len returns the number of published bytes.
func (r *AddReader) Len() uint64 { return r.store.length.Load() }

// Clone returns another reader of the same buffer.
func (r *AddReader) Clone() *AddReader { return &AddReader{store: r.store} }

// Bytes returns n published bytes at pos without copying. The range must
// lie within a single write or a run of writes made to one bucket.
func (r *AddReader) Bytes(pos, n uint64) ([]byte, error) {
	if err := checkRange(pos, n, r.store.length.Load()); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buckets := *r.store.buckets.Load()
	i := sort.Search(len(buckets), func(i int) bool { return buckets[i].start > pos }) - 1
	if i < 0 {
		return nil, errors.AssertionFailedf("no bucket holds offset %d", pos)
	}
	b := buckets[i]
	off := pos - b.start
	if off+n > uint64(len(b.data)) {
		return nil, errors.AssertionFailedf("range %d+%d straddles bucket at %d", pos, n, b.start)
	}
	return b.data[off : off+n : off+n], nil
}

// Same reports whether r and o read the same buffer.
func (r *AddReader) Same(o *AddReader) bool { return r.store == o.store }
