package search

import "github.com/dshills/piecetree/internal/engine/text"

// Searcher finds a pattern scanning forward.
type Searcher struct {
	pat  []byte
	f    folder
	bad  [256]int
	good []int
}

// New builds a forward searcher. With caseInsensitive, ASCII letters match
// either case; a pattern containing non-ASCII bytes is then rejected. An
// empty pattern is always rejected.
func New(pattern []byte, caseInsensitive bool) (*Searcher, bool) {
	pat, ok := preparePattern(pattern, caseInsensitive)
	if !ok {
		return nil, false
	}
	m := len(pat)
	s := &Searcher{pat: pat, f: folder(caseInsensitive)}

	// Horspool: align the window's last byte with its last occurrence in
	// pat[:m-1].
	for i := range s.bad {
		s.bad[i] = m
	}
	for i := 0; i < m-1; i++ {
		s.bad[pat[i]] = m - 1 - i
	}
	s.good = goodSuffix(m, func(i int) byte { return pat[i] })
	return s, true
}

// Pattern returns the pattern as matched (lower-cased when case
// insensitive).
func (s *Searcher) Pattern() []byte { return s.pat }

// Find returns the first match at or after the cursor position and leaves
// the cursor at its end. When nothing matches the cursor is left at the
// end of input.
func (s *Searcher) Find(cur text.ByteCursor) (Match, bool) {
	m := len(s.pat)
	win := make([]byte, 0, m)
	for {
		for len(win) < m {
			b, ok := cur.Next()
			if !ok {
				return Match{}, false
			}
			win = append(win, s.f.fold(b))
		}

		j := m - 1
		for j >= 0 && win[j] == s.pat[j] {
			j--
		}
		if j < 0 {
			end := cur.Pos()
			return Match{Start: end - uint64(m), End: end}, true
		}

		shift := s.bad[win[m-1]]
		if g := s.good[j]; g > shift {
			shift = g
		}
		copy(win, win[shift:])
		win = win[:m-shift]
	}
}

// FindAll returns every non-overlapping match after the cursor position.
func (s *Searcher) FindAll(cur text.ByteCursor) []Match {
	var out []Match
	for {
		m, ok := s.Find(cur)
		if !ok {
			return out
		}
		out = append(out, m)
	}
}
