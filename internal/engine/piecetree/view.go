package piecetree

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/text"
)

// view is a read-only window [lo, hi) over a tree. Positions taken and
// returned by its methods are relative to lo.
type view struct {
	src    source
	root   *node
	lo, hi uint64
}

// Len returns the number of bytes in the window.
func (v *view) Len() uint64 { return v.hi - v.lo }

// IsEmpty reports whether the window holds no bytes.
func (v *view) IsEmpty() bool { return v.hi == v.lo }

func (v *view) check(pos uint64) error {
	if pos > v.Len() {
		return outOfBounds(pos, v.Len())
	}
	return nil
}

// Bytes returns a byte iterator positioned at the start.
func (v *view) Bytes() *Bytes {
	return &Bytes{c: newCursor(v, v.lo)}
}

// BytesAt returns a byte iterator positioned before the byte at pos.
func (v *view) BytesAt(pos uint64) (*Bytes, error) {
	if err := v.check(pos); err != nil {
		return nil, err
	}
	return &Bytes{c: newCursor(v, v.lo+pos)}, nil
}

// Chunks returns a chunk iterator positioned at the start.
func (v *view) Chunks() *Chunks {
	return &Chunks{c: newCursor(v, v.lo)}
}

// ChunksAt returns a chunk iterator positioned at pos.
func (v *view) ChunksAt(pos uint64) (*Chunks, error) {
	if err := v.check(pos); err != nil {
		return nil, err
	}
	return &Chunks{c: newCursor(v, v.lo+pos)}, nil
}

// Chars returns a UTF-8 decoding iterator positioned at the start.
func (v *view) Chars() *text.Chars {
	return text.NewChars(v.Bytes())
}

// CharsAt returns a UTF-8 decoding iterator positioned at pos, which need
// not be a character boundary.
func (v *view) CharsAt(pos uint64) (*text.Chars, error) {
	b, err := v.BytesAt(pos)
	if err != nil {
		return nil, err
	}
	return text.NewChars(b), nil
}

// Graphemes returns a grapheme cluster iterator positioned at the start.
func (v *view) Graphemes() *text.Graphemes {
	return text.NewGraphemes(v.Bytes())
}

// GraphemesAt returns a grapheme cluster iterator positioned at pos.
func (v *view) GraphemesAt(pos uint64) (*text.Graphemes, error) {
	b, err := v.BytesAt(pos)
	if err != nil {
		return nil, err
	}
	return text.NewGraphemes(b), nil
}

// Slice returns a view of the bytes in r. The slice borrows from its
// parent and is only valid while the parent is.
func (v *view) Slice(r Range) (*Slice, error) {
	start, end, err := r.Resolve(v.Len())
	if err != nil {
		return nil, err
	}
	return &Slice{view: v.sub(start, end)}, nil
}

func (v *view) sub(start, end uint64) view {
	return view{src: v.src, root: v.root, lo: v.lo + start, hi: v.lo + end}
}

// Text returns a copy of the bytes in r.
func (v *view) Text(r Range) ([]byte, error) {
	start, end, err := r.Resolve(v.Len())
	if err != nil {
		return nil, err
	}
	sub := v.sub(start, end)
	out := make([]byte, 0, end-start)
	ch := sub.Chunks()
	for {
		b, ok := ch.Next()
		if !ok {
			break
		}
		out = append(out, b...)
	}
	if err := ch.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteTo writes the content to w.
func (v *view) WriteTo(w io.Writer) (int64, error) {
	var total int64
	ch := v.Chunks()
	for {
		b, ok := ch.Next()
		if !ok {
			break
		}
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, errors.Wrap(err, "write")
		}
	}
	return total, ch.Err()
}

// String returns the content. Read errors truncate the result.
func (v *view) String() string {
	var sb strings.Builder
	sb.Grow(int(v.Len()))
	_, _ = v.WriteTo(&sb)
	return sb.String()
}

// EachPiece calls fn with every piece overlapping the window, clipped to
// it, and the piece's position, until fn returns false.
func (v *view) EachPiece(fn func(p Piece, pos uint64) bool) {
	it := newPieceIter(v.root, v.lo, v.hi)
	it.seek(v.lo)
	for ok := it.cur != nil; ok; ok = it.next() {
		p, s, _ := it.get()
		if p.Len == 0 {
			continue
		}
		if !fn(p, s-v.lo) {
			return
		}
	}
}

// Lines returns a line iterator positioned at the first line.
func (v *view) Lines() *Lines {
	return &Lines{v: *v, b: v.Bytes()}
}

// LinesAt returns a line iterator positioned at the line holding pos.
func (v *view) LinesAt(pos uint64) (*Lines, error) {
	b, err := v.BytesAt(pos)
	if err != nil {
		return nil, err
	}
	for {
		c, ok := b.Prev()
		if !ok {
			break
		}
		if c == '\n' {
			b.Next()
			break
		}
	}
	return &Lines{v: *v, b: b}, nil
}

// Slice is a read-only view of a byte range. Slices returned by a
// PieceTree own references to its structure and must be released;
// slices of slices, snapshots and lines borrow from their parent.
type Slice struct {
	view
	owned    bool
	released bool
}

// Start returns the slice's offset within the tree it was taken from.
func (s *Slice) Start() uint64 { return s.lo }

// End returns the offset just past the slice within its tree.
func (s *Slice) End() uint64 { return s.hi }

// Release drops the references held by an owned slice. It is a no-op for
// borrowed slices and on repeated calls.
func (s *Slice) Release() {
	if !s.owned || s.released {
		return
	}
	s.released = true
	s.root.decRef(true)
	_ = s.src.orig.Release()
}
