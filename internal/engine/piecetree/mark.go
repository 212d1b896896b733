package piecetree

// Mark remembers a position by the buffer byte it sits on rather than by
// document offset, so it follows that byte through later edits.
type Mark struct {
	Kind BufferKind
	// Pos is the buffer offset of the marked byte.
	Pos uint64
	// Orig is the document position the mark last resolved to.
	Orig uint64
	// Count is the number of earlier pieces that also hold Pos. It tells
	// apart copies of the same buffer bytes.
	Count int
	// EOB marks the end of the content wherever it moves.
	EOB bool
}

// MarkPos is a resolved mark.
type MarkPos struct {
	Pos uint64
	// Deleted reports that the marked byte is no longer in the content;
	// Pos is then the nearest surviving position.
	Deleted bool
}

// Mark returns a mark on the byte at pos. The mark follows that byte, so
// text inserted at the mark's position goes before it. A mark at the end
// of the content stays at the end.
func (v *view) Mark(pos uint64) (Mark, error) {
	if err := v.check(pos); err != nil {
		return Mark{}, err
	}
	if pos == v.Len() {
		return Mark{Orig: pos, EOB: true}, nil
	}

	var (
		m     Mark
		found bool
		seen  []Piece
	)
	v.EachPiece(func(p Piece, s uint64) bool {
		if pos < s+p.Len {
			m = Mark{Kind: p.Kind, Pos: p.Pos + (pos - s), Orig: pos}
			found = true
			return false
		}
		seen = append(seen, p)
		return true
	})
	if !found {
		return Mark{Orig: pos, EOB: true}, nil
	}
	for _, p := range seen {
		if p.contains(m.Kind, m.Pos) {
			m.Count++
		}
	}
	return m, nil
}

// MarkToPos resolves m and records the result in m.Orig.
func (v *view) MarkToPos(m *Mark) MarkPos {
	if m.EOB {
		m.Orig = v.Len()
		return MarkPos{Pos: m.Orig}
	}

	var (
		seen              int
		last              uint64
		matched           bool
		before, after     uint64
		hasBefore         bool
		hasAfter          bool
		beforeEnd, aftPos uint64
	)
	var hit *MarkPos
	v.EachPiece(func(p Piece, s uint64) bool {
		if p.contains(m.Kind, m.Pos) {
			pos := s + (m.Pos - p.Pos)
			if seen == m.Count {
				hit = &MarkPos{Pos: pos}
				return false
			}
			seen++
			last, matched = pos, true
			return true
		}
		if p.Kind != m.Kind {
			return true
		}
		if e := p.End(); e <= m.Pos && (!hasBefore || e > beforeEnd) {
			before, beforeEnd, hasBefore = s+p.Len, e, true
		}
		if p.Pos > m.Pos && (!hasAfter || p.Pos < aftPos) {
			after, aftPos, hasAfter = s, p.Pos, true
		}
		return true
	})

	var res MarkPos
	switch {
	case hit != nil:
		res = *hit
	case matched:
		// Fewer copies remain than when the mark was made.
		res = MarkPos{Pos: last}
	case hasBefore:
		res = MarkPos{Pos: before, Deleted: true}
	case hasAfter:
		res = MarkPos{Pos: after, Deleted: true}
	default:
		res = MarkPos{Pos: min(m.Orig, v.Len()), Deleted: true}
	}
	m.Orig = res.Pos
	return res
}
