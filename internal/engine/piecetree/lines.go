package piecetree

// Lines iterates over lines in either direction. A line runs from its
// first byte through its terminating '\n'. Content that is empty or ends
// with '\n' has a final empty line.
type Lines struct {
	v view
	b *Bytes // at the start of the next line
	// past is set once the final line has been returned by Next.
	past bool
}

// Next returns the line at the cursor and advances past it.
func (l *Lines) Next() (*Slice, bool) {
	if l.past {
		return nil, false
	}
	start := l.b.Pos()
	for {
		c, ok := l.b.Next()
		if !ok {
			l.past = true
			break
		}
		if c == '\n' {
			break
		}
	}
	end := l.b.Pos()
	if l.past {
		if l.b.Err() != nil {
			return nil, false
		}
		// Park at the start of the last line so Prev returns it.
		l.b = &Bytes{c: newCursor(&l.v, l.v.lo+start)}
	}
	return &Slice{view: l.v.sub(start, end)}, true
}

// Prev moves back one line and returns it.
func (l *Lines) Prev() (*Slice, bool) {
	if l.past {
		l.past = false
		start := l.b.Pos()
		return &Slice{view: l.v.sub(start, l.v.Len())}, true
	}
	end := l.b.Pos()
	if end == 0 {
		return nil, false
	}
	// The byte before a line start is the previous line's '\n'.
	if _, ok := l.b.Prev(); !ok {
		return nil, false
	}
	for {
		c, ok := l.b.Prev()
		if !ok {
			break
		}
		if c == '\n' {
			l.b.Next()
			break
		}
	}
	return &Slice{view: l.v.sub(l.b.Pos(), end)}, true
}

// Pos returns the start of the line Next would return.
func (l *Lines) Pos() uint64 { return l.b.Pos() }
