package text

// Cluster is the byte range of one grapheme cluster.
type Cluster struct {
	Start, End uint64
}

// Len returns the cluster length in bytes.
func (c Cluster) Len() uint64 { return c.End - c.Start }

// Graphemes segments a ByteCursor into extended grapheme clusters.
type Graphemes struct {
	chars *Chars
}

// NewGraphemes returns a segmenter reading from cur. cur should sit on a
// cluster boundary.
func NewGraphemes(cur ByteCursor) *Graphemes {
	return &Graphemes{chars: NewChars(cur)}
}

// Pos returns the byte position of the segmenter.
func (g *Graphemes) Pos() uint64 { return g.chars.Pos() }

// Next returns the cluster after the position.
func (g *Graphemes) Next() (Cluster, bool) {
	a, ok := g.chars.Next()
	if !ok {
		return Cluster{}, false
	}
	start := a.Start
	for {
		b, ok := g.chars.Next()
		if !ok {
			return Cluster{Start: start, End: a.End}, true
		}
		// The cursor sits after b; a starts two characters back.
		if g.boundary(a.Rune, b.Rune, 2) {
			g.chars.Prev()
			return Cluster{Start: start, End: a.End}, true
		}
		a = b
	}
}

// Prev returns the cluster before the position.
func (g *Graphemes) Prev() (Cluster, bool) {
	b, ok := g.chars.Prev()
	if !ok {
		return Cluster{}, false
	}
	end := b.End
	for {
		a, ok := g.chars.Prev()
		if !ok {
			return Cluster{Start: b.Start, End: end}, true
		}
		// The cursor sits at the start of a.
		if g.boundary(a.Rune, b.Rune, 0) {
			g.chars.Next()
			return Cluster{Start: b.Start, End: end}, true
		}
		b = a
	}
}

// boundary reports whether a cluster boundary lies between a and b.
// skip is the number of characters between the cursor and the start of a,
// needed by the rules that look further back.
func (g *Graphemes) boundary(a, b rune, skip int) bool {
	pa, pb := graphemeProp(a), graphemeProp(b)
	switch {
	case pa == gbCR && pb == gbLF: // GB3
		return false
	case pa == gbControl || pa == gbCR || pa == gbLF: // GB4
		return true
	case pb == gbControl || pb == gbCR || pb == gbLF: // GB5
		return true
	case pa == gbL && (pb == gbL || pb == gbV || pb == gbLV || pb == gbLVT): // GB6
		return false
	case (pa == gbLV || pa == gbV) && (pb == gbV || pb == gbT): // GB7
		return false
	case (pa == gbLVT || pa == gbT) && pb == gbT: // GB8
		return false
	case pb == gbExtend || pb == gbZWJ: // GB9
		return false
	case pb == gbSpacingMark: // GB9a
		return false
	case pa == gbPrepend: // GB9b
		return false
	case pa == gbZWJ && pb == gbExtPict: // GB11
		return !g.pictographicBefore(skip)
	case pa == gbRegionalIndicator && pb == gbRegionalIndicator: // GB12, GB13
		return g.indicatorsBefore(skip)%2 == 1
	}
	return true // GB999
}

// pictographicBefore reports whether the characters before a are
// Extended_Pictographic followed by any number of Extend.
func (g *Graphemes) pictographicBefore(skip int) bool {
	found := false
	g.scanBack(skip, func(r rune) bool {
		switch graphemeProp(r) {
		case gbExtend:
			return true
		case gbExtPict:
			found = true
		}
		return false
	})
	return found
}

// indicatorsBefore counts the regional indicators immediately before a.
func (g *Graphemes) indicatorsBefore(skip int) int {
	n := 0
	g.scanBack(skip, func(r rune) bool {
		if graphemeProp(r) != gbRegionalIndicator {
			return false
		}
		n++
		return true
	})
	return n
}

// scanBack steps back over skip characters, then feeds preceding
// characters to visit until it returns false, and finally restores the
// cursor.
func (g *Graphemes) scanBack(skip int, visit func(rune) bool) {
	steps := 0
	for ; steps < skip; steps++ {
		if _, ok := g.chars.Prev(); !ok {
			break
		}
	}
	if steps == skip {
		for {
			c, ok := g.chars.Prev()
			if !ok {
				break
			}
			steps++
			if !visit(c.Rune) {
				break
			}
		}
	}
	for ; steps > 0; steps-- {
		g.chars.Next()
	}
}
