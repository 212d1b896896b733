// Package search finds byte patterns in a text.ByteCursor with
// Boyer-Moore-Horspool skipping.
//
// A searcher is built once per pattern and may be reused, including from
// several goroutines. Each Find call streams bytes from the cursor through
// a window the size of the pattern and leaves the cursor just past the
// match (forward) or at its start (backward), so repeated calls report
// non-overlapping matches in discovery order.
package search

import "unicode/utf8"

// Match is the byte range [Start, End) of one occurrence.
type Match struct {
	Start, End uint64
}

// Len returns the match length.
func (m Match) Len() uint64 { return m.End - m.Start }

type folder bool

func (f folder) fold(b byte) byte {
	if f && 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// preparePattern copies pattern, lower-casing it when caseInsensitive.
// It fails for an empty pattern and for non-ASCII case-insensitive ones.
func preparePattern(pattern []byte, caseInsensitive bool) ([]byte, bool) {
	if len(pattern) == 0 {
		return nil, false
	}
	f := folder(caseInsensitive)
	pat := make([]byte, len(pattern))
	for i, b := range pattern {
		if caseInsensitive && b >= utf8.RuneSelf {
			return nil, false
		}
		pat[i] = f.fold(b)
	}
	return pat, true
}

// suffixes returns, for each i, the length of the longest common suffix
// of the pattern and the pattern prefix ending at i. at reads the pattern.
func suffixes(m int, at func(int) byte) []int {
	suff := make([]int, m)
	suff[m-1] = m
	g, f := m-1, 0
	for i := m - 2; i >= 0; i-- {
		if i > g && suff[i+m-1-f] < i-g {
			suff[i] = suff[i+m-1-f]
			continue
		}
		if i < g {
			g = i
		}
		f = i
		for g >= 0 && at(g) == at(g+m-1-f) {
			g--
		}
		suff[i] = f - g
	}
	return suff
}

// goodSuffix returns the strong good-suffix shift for a mismatch at each
// pattern index, comparing right to left.
func goodSuffix(m int, at func(int) byte) []int {
	suff := suffixes(m, at)
	gs := make([]int, m)
	for i := range gs {
		gs[i] = m
	}
	j := 0
	for i := m - 1; i >= 0; i-- {
		if suff[i] != i+1 {
			continue
		}
		for ; j < m-1-i; j++ {
			if gs[j] == m {
				gs[j] = m - 1 - i
			}
		}
	}
	for i := 0; i <= m-2; i++ {
		gs[m-1-suff[i]] = m - 1 - i
	}
	return gs
}
