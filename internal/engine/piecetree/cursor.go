package piecetree

import "github.com/dshills/piecetree/internal/engine/storage"

// source resolves pieces to bytes.
type source struct {
	orig *storage.Shared
	add  *storage.AddReader
}

func (s source) bytes(p Piece) ([]byte, error) {
	if p.Len == 0 {
		return nil, nil
	}
	if p.Kind == Original {
		return s.orig.Slice(p.Pos, p.Len)
	}
	return s.add.Bytes(p.Pos, p.Len)
}

// cursor is the shared core of Bytes and Chunks. chunk holds the bytes of
// the current piece clipped to the window, starting at document position
// start; start <= pos <= start+len(chunk) always holds.
type cursor struct {
	it    pieceIter
	src   source
	chunk []byte
	start uint64
	pos   uint64
	err   error
}

func newCursor(v *view, pos uint64) cursor {
	c := cursor{
		it:  newPieceIter(v.root, v.lo, v.hi),
		src: v.src,
		pos: pos,
	}
	c.it.seek(pos)
	c.load()
	return c
}

func (c *cursor) load() {
	p, s, ok := c.it.get()
	if !ok {
		c.chunk, c.start = nil, c.pos
		return
	}
	b, err := c.src.bytes(p)
	if err != nil {
		c.err = err
		b = nil
	}
	c.chunk, c.start = b, s
}

func (c *cursor) end() uint64 { return c.start + uint64(len(c.chunk)) }

// forward makes the chunk cover the byte at pos.
func (c *cursor) forward() bool {
	for c.pos >= c.end() {
		if c.err != nil {
			return false
		}
		if !c.it.next() {
			c.it.prev()
			return false
		}
		c.load()
	}
	return c.err == nil
}

// backward makes the chunk cover the byte before pos.
func (c *cursor) backward() bool {
	for c.pos <= c.start {
		if c.err != nil {
			return false
		}
		if !c.it.prev() {
			c.it.next()
			return false
		}
		c.load()
	}
	return c.err == nil
}

// Bytes iterates over the bytes of a document or slice in either
// direction. Calling Prev after Next yields the same byte again.
type Bytes struct {
	c cursor
}

// Next returns the byte at the cursor and advances past it.
func (b *Bytes) Next() (byte, bool) {
	if !b.c.forward() {
		return 0, false
	}
	v := b.c.chunk[b.c.pos-b.c.start]
	b.c.pos++
	return v, true
}

// Prev moves back one byte and returns it.
func (b *Bytes) Prev() (byte, bool) {
	if !b.c.backward() {
		return 0, false
	}
	b.c.pos--
	return b.c.chunk[b.c.pos-b.c.start], true
}

// Pos returns the cursor position relative to the start of the iterated
// range.
func (b *Bytes) Pos() uint64 { return b.c.pos - b.c.it.lo }

// Err returns the error that stopped iteration, if any. Reads only fail
// for paged storage.
func (b *Bytes) Err() error { return b.c.err }

// Chunks iterates over the contiguous byte runs of a document or slice.
// The returned slices alias storage and must not be modified.
type Chunks struct {
	c cursor
}

// Next returns the run from the cursor to the end of its piece.
func (ch *Chunks) Next() ([]byte, bool) {
	if !ch.c.forward() {
		return nil, false
	}
	out := ch.c.chunk[ch.c.pos-ch.c.start:]
	ch.c.pos = ch.c.end()
	return out, true
}

// Prev returns the run from the start of the cursor's piece to the
// cursor.
func (ch *Chunks) Prev() ([]byte, bool) {
	if !ch.c.backward() {
		return nil, false
	}
	out := ch.c.chunk[:ch.c.pos-ch.c.start]
	ch.c.pos = ch.c.start
	return out, true
}

// Pos returns the cursor position relative to the start of the iterated
// range.
func (ch *Chunks) Pos() uint64 { return ch.c.pos - ch.c.it.lo }

// Err returns the error that stopped iteration, if any.
func (ch *Chunks) Err() error { return ch.c.err }
