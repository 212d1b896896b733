package search

import "github.com/dshills/piecetree/internal/engine/text"

// SearcherRev finds a pattern scanning backward. Its tables mirror the
// forward ones: the window is compared left to right and the skip is
// keyed on the window's first byte.
type SearcherRev struct {
	pat  []byte
	f    folder
	bad  [256]int
	good []int // indexed by distance of the mismatch from the pattern end
}

// NewRev builds a backward searcher. Pattern rules match New.
func NewRev(pattern []byte, caseInsensitive bool) (*SearcherRev, bool) {
	pat, ok := preparePattern(pattern, caseInsensitive)
	if !ok {
		return nil, false
	}
	m := len(pat)
	s := &SearcherRev{pat: pat, f: folder(caseInsensitive)}

	// Align the window's first byte with its first occurrence in pat[1:].
	for i := range s.bad {
		s.bad[i] = m
	}
	for i := m - 1; i >= 1; i-- {
		s.bad[pat[i]] = i
	}
	s.good = goodSuffix(m, func(i int) byte { return pat[m-1-i] })
	return s, true
}

// Pattern returns the pattern as matched.
func (s *SearcherRev) Pattern() []byte { return s.pat }

// Find returns the last match ending at or before the cursor position and
// leaves the cursor at its start.
func (s *SearcherRev) Find(cur text.ByteCursor) (Match, bool) {
	m := len(s.pat)
	win := make([]byte, m)
	// fill reads n bytes backward into win[:n].
	fill := func(n int) bool {
		for i := n - 1; i >= 0; i-- {
			b, ok := cur.Prev()
			if !ok {
				return false
			}
			win[i] = s.f.fold(b)
		}
		return true
	}

	if !fill(m) {
		return Match{}, false
	}
	for {
		t := 0
		for t < m && win[t] == s.pat[t] {
			t++
		}
		if t == m {
			start := cur.Pos()
			return Match{Start: start, End: start + uint64(m)}, true
		}

		shift := s.bad[win[0]]
		if g := s.good[m-1-t]; g > shift {
			shift = g
		}
		copy(win[shift:], win[:m-shift])
		if !fill(shift) {
			return Match{}, false
		}
	}
}

// FindAll returns every non-overlapping match before the cursor position,
// nearest first.
func (s *SearcherRev) FindAll(cur text.ByteCursor) []Match {
	var out []Match
	for {
		m, ok := s.Find(cur)
		if !ok {
			return out
		}
		out = append(out, m)
	}
}
