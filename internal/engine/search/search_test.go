package search

import (
	"bytes"
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/dshills/piecetree/internal/engine/text"
)

func forwardAll(t *testing.T, pat, hay string, ci bool) []Match {
	t.Helper()
	s, ok := New([]byte(pat), ci)
	if !ok {
		t.Fatalf("New(%q) rejected", pat)
	}
	return s.FindAll(text.NewSliceCursor([]byte(hay), 0))
}

func reverseAll(t *testing.T, pat, hay string, ci bool) []Match {
	t.Helper()
	s, ok := NewRev([]byte(pat), ci)
	if !ok {
		t.Fatalf("NewRev(%q) rejected", pat)
	}
	return s.FindAll(text.NewSliceCursor([]byte(hay), len(hay)))
}

func equalMatches(a, b []Match) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchDependencies(t *testing.T) {
	hay := "[dependencies][dev-dependencies]"

	fwd := forwardAll(t, "dependencies", hay, false)
	if want := []Match{{1, 13}, {19, 31}}; !equalMatches(fwd, want) {
		t.Errorf("forward = %v, want %v", fwd, want)
	}
	rev := reverseAll(t, "dependencies", hay, false)
	if want := []Match{{19, 31}, {1, 13}}; !equalMatches(rev, want) {
		t.Errorf("reverse = %v, want %v", rev, want)
	}
}

func TestSearchCases(t *testing.T) {
	tests := []struct {
		name string
		pat  string
		hay  string
		ci   bool
		fwd  []Match
		rev  []Match
	}{
		{"no match", "xyz", "abcabc", false, nil, nil},
		{"pattern longer than text", "abcdef", "abc", false, nil, nil},
		{"whole text", "abc", "abc", false, []Match{{0, 3}}, []Match{{0, 3}}},
		{"single byte", "a", "banana", false, []Match{{1, 2}, {3, 4}, {5, 6}}, []Match{{5, 6}, {3, 4}, {1, 2}}},
		{"non-overlapping", "aa", "aaaaa", false, []Match{{0, 2}, {2, 4}}, []Match{{3, 5}, {1, 3}}},
		{"periodic", "abab", "abababab", false, []Match{{0, 4}, {4, 8}}, []Match{{4, 8}, {0, 4}}},
		{"case insensitive", "HeLLo", "hello HELLO hElLo", true, []Match{{0, 5}, {6, 11}, {12, 17}}, []Match{{12, 17}, {6, 11}, {0, 5}}},
		{"case sensitive", "Hello", "hello Hello", false, []Match{{6, 11}}, []Match{{6, 11}}},
		{"utf8 bytes", "\u00E9t\u00E9", "\u00E9t\u00E9 \u00E9t\u00E9", false, []Match{{0, 5}, {6, 11}}, []Match{{6, 11}, {0, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := forwardAll(t, tt.pat, tt.hay, tt.ci); !equalMatches(got, tt.fwd) {
				t.Errorf("forward = %v, want %v", got, tt.fwd)
			}
			if got := reverseAll(t, tt.pat, tt.hay, tt.ci); !equalMatches(got, tt.rev) {
				t.Errorf("reverse = %v, want %v", got, tt.rev)
			}
		})
	}
}

func TestSearchRejectsPatterns(t *testing.T) {
	if _, ok := New([]byte("caf\u00E9"), true); ok {
		t.Error("case-insensitive non-ASCII pattern accepted")
	}
	if _, ok := NewRev([]byte("caf\u00E9"), true); ok {
		t.Error("reverse case-insensitive non-ASCII pattern accepted")
	}
	if _, ok := New([]byte("caf\u00E9"), false); !ok {
		t.Error("case-sensitive non-ASCII pattern rejected")
	}
	if _, ok := New(nil, false); ok {
		t.Error("empty pattern accepted")
	}
	if _, ok := NewRev([]byte{}, false); ok {
		t.Error("empty reverse pattern accepted")
	}
}

func TestSearchCursorPosition(t *testing.T) {
	s, _ := New([]byte("ab"), false)
	cur := text.NewSliceCursor([]byte("xxabyyab"), 0)
	m, ok := s.Find(cur)
	if !ok || m != (Match{2, 4}) || cur.Pos() != 4 {
		t.Fatalf("Find = %v, %v; cursor %d", m, ok, cur.Pos())
	}

	r, _ := NewRev([]byte("ab"), false)
	cur = text.NewSliceCursor([]byte("xxabyyab"), 6)
	m, ok = r.Find(cur)
	if !ok || m != (Match{2, 4}) || cur.Pos() != 2 {
		t.Fatalf("reverse Find = %v, %v; cursor %d", m, ok, cur.Pos())
	}
}

// naive reports non-overlapping matches the slow way.
func naive(pat, hay []byte, reverse bool) []Match {
	var out []Match
	m := len(pat)
	if !reverse {
		for i := 0; i+m <= len(hay); {
			if bytes.Equal(hay[i:i+m], pat) {
				out = append(out, Match{uint64(i), uint64(i + m)})
				i += m
				continue
			}
			i++
		}
		return out
	}
	for i := len(hay) - m; i >= 0; {
		if bytes.Equal(hay[i:i+m], pat) {
			out = append(out, Match{uint64(i), uint64(i + m)})
			i -= m
			continue
		}
		i--
	}
	return out
}

func TestSearchMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	alphabet := []byte("abc")
	gen := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return b
	}
	for i := 0; i < 3000; i++ {
		pat := gen(1 + rng.Intn(6))
		hay := gen(rng.Intn(80))

		fs, _ := New(pat, false)
		if got, want := fs.FindAll(text.NewSliceCursor(hay, 0)), naive(pat, hay, false); !equalMatches(got, want) {
			t.Fatalf("forward %q in %q = %v, want %v", pat, hay, got, want)
		}
		rs, _ := NewRev(pat, false)
		if got, want := rs.FindAll(text.NewSliceCursor(hay, len(hay))), naive(pat, hay, true); !equalMatches(got, want) {
			t.Fatalf("reverse %q in %q = %v, want %v", pat, hay, got, want)
		}
	}
}

func TestSearchQuick(t *testing.T) {
	f := func(pat, hay []byte) bool {
		if len(pat) == 0 {
			return true
		}
		fs, _ := New(pat, false)
		rs, _ := NewRev(pat, false)
		return equalMatches(fs.FindAll(text.NewSliceCursor(hay, 0)), naive(pat, hay, false)) &&
			equalMatches(rs.FindAll(text.NewSliceCursor(hay, len(hay))), naive(pat, hay, true))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestGoodSuffixTable(t *testing.T) {
	// Classic example from the Boyer-Moore literature.
	pat := []byte("GCAGAGAG")
	got := goodSuffix(len(pat), func(i int) byte { return pat[i] })
	want := []int{7, 7, 7, 2, 7, 4, 7, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("goodSuffix(%s) = %v, want %v", pat, got, want)
		}
	}
}

func BenchmarkSearchForward(b *testing.B) {
	hay := bytes.Repeat([]byte("lorem ipsum dolor sit amet, consectetur adipiscing elit "), 2000)
	hay = append(hay, "needle"...)
	s, _ := New([]byte("needle"), false)
	b.SetBytes(int64(len(hay)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := s.Find(text.NewSliceCursor(hay, 0)); !ok {
			b.Fatal("needle not found")
		}
	}
}
