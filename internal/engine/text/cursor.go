package text

// ByteCursor is a position between bytes of a byte sequence.
type ByteCursor interface {
	// Next returns the byte after the position and advances past it.
	Next() (byte, bool)
	// Prev returns the byte before the position and moves before it.
	Prev() (byte, bool)
	// Pos returns the absolute position.
	Pos() uint64
}

// SliceCursor is a ByteCursor over an in-memory slice.
type SliceCursor struct {
	b   []byte
	pos int
}

// NewSliceCursor returns a cursor over b positioned at pos, clamped to
// [0, len(b)].
func NewSliceCursor(b []byte, pos int) *SliceCursor {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b) {
		pos = len(b)
	}
	return &SliceCursor{b: b, pos: pos}
}

func (c *SliceCursor) Next() (byte, bool) {
	if c.pos >= len(c.b) {
		return 0, false
	}
	c.pos++
	return c.b[c.pos-1], true
}

func (c *SliceCursor) Prev() (byte, bool) {
	if c.pos == 0 {
		return 0, false
	}
	c.pos--
	return c.b[c.pos], true
}

func (c *SliceCursor) Pos() uint64 { return uint64(c.pos) }
