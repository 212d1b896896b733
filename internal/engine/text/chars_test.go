package text

import (
	"math/rand"
	"testing"
	"unicode/utf8"
)

func forwardChars(b []byte) []Char {
	var out []Char
	cs := NewChars(NewSliceCursor(b, 0))
	for {
		c, ok := cs.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func backwardChars(b []byte) []Char {
	var out []Char
	cs := NewChars(NewSliceCursor(b, len(b)))
	for {
		c, ok := cs.Prev()
		if !ok {
			break
		}
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func TestCharsMaximalSubpart(t *testing.T) {
	input := []byte("ab\xFF\xF0\x90\x8D\xFF\x90\x8Dcd")
	want := []Char{
		{0, 1, 'a'},
		{1, 2, 'b'},
		{2, 3, utf8.RuneError},
		{3, 6, utf8.RuneError},
		{6, 7, utf8.RuneError},
		{7, 8, utf8.RuneError},
		{8, 9, utf8.RuneError},
		{9, 10, 'c'},
		{10, 11, 'd'},
	}

	check := func(name string, got []Char) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: got %d chars %v, want %d", name, len(got), got, len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
			}
		}
	}
	check("forward", forwardChars(input))
	check("backward", backwardChars(input))
}

func TestCharsCases(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		spans []uint64 // end offsets
		runes []rune
	}{
		{"empty", "", nil, nil},
		{"ascii", "hi", []uint64{1, 2}, []rune{'h', 'i'}},
		{"two byte", "\u00E9", []uint64{2}, []rune{0xE9}},
		{"three byte", "\u20AC", []uint64{3}, []rune{0x20AC}},
		{"four byte", "\U0001F600", []uint64{4}, []rune{0x1F600}},
		{"overlong E0", "\xE0\x80\x80", []uint64{1, 2, 3}, []rune{utf8.RuneError, utf8.RuneError, utf8.RuneError}},
		{"surrogate", "\xED\xA0\x80", []uint64{1, 2, 3}, []rune{utf8.RuneError, utf8.RuneError, utf8.RuneError}},
		{"above max", "\xF4\x90\x80\x80", []uint64{1, 2, 3, 4}, []rune{utf8.RuneError, utf8.RuneError, utf8.RuneError, utf8.RuneError}},
		{"truncated at end", "a\xE2\x82", []uint64{1, 3}, []rune{'a', utf8.RuneError}},
		{"truncated before ascii", "\xE2\x82x", []uint64{2, 3}, []rune{utf8.RuneError, 'x'}},
		{"extra continuation", "\xC3\xA9\xA9", []uint64{2, 3}, []rune{0xE9, utf8.RuneError}},
		{"lone lead", "\xC3", []uint64{1}, []rune{utf8.RuneError}},
		{"four byte then continuation", "\xF0\x9F\x98\x80\x80", []uint64{4, 5}, []rune{0x1F600, utf8.RuneError}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for dir, got := range map[string][]Char{
				"forward":  forwardChars([]byte(tt.in)),
				"backward": backwardChars([]byte(tt.in)),
			} {
				if len(got) != len(tt.spans) {
					t.Fatalf("%s: got %v", dir, got)
				}
				for i, c := range got {
					if c.End != tt.spans[i] || c.Rune != tt.runes[i] {
						t.Errorf("%s[%d] = %v, want end %d rune %U", dir, i, c, tt.spans[i], tt.runes[i])
					}
				}
			}
		})
	}
}

func TestCharsInterleaved(t *testing.T) {
	input := []byte("x\xF0\x90\x8D\u20AC\xFF\u00E9\xE2\x82y")
	want := forwardChars(input)
	cs := NewChars(NewSliceCursor(input, 0))

	rng := rand.New(rand.NewSource(7))
	idx := 0 // number of chars consumed
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			c, ok := cs.Next()
			if idx == len(want) {
				if ok {
					t.Fatalf("Next past end returned %v", c)
				}
				continue
			}
			if !ok || c != want[idx] {
				t.Fatalf("step %d: Next = %v, %v; want %v", i, c, ok, want[idx])
			}
			idx++
		} else {
			c, ok := cs.Prev()
			if idx == 0 {
				if ok {
					t.Fatalf("Prev before start returned %v", c)
				}
				continue
			}
			idx--
			if !ok || c != want[idx] {
				t.Fatalf("step %d: Prev = %v, %v; want %v", i, c, ok, want[idx])
			}
		}
	}
}

func checkCharsAgree(t *testing.T, b []byte) {
	t.Helper()
	fwd := forwardChars(b)
	bwd := backwardChars(b)
	if len(fwd) != len(bwd) {
		t.Fatalf("%q: forward %v, backward %v", b, fwd, bwd)
	}
	var pos uint64
	for i := range fwd {
		if fwd[i] != bwd[i] {
			t.Fatalf("%q: char %d forward %v, backward %v", b, i, fwd[i], bwd[i])
		}
		if fwd[i].Start != pos || fwd[i].End <= pos || fwd[i].Len() > 4 {
			t.Fatalf("%q: char %d has bad span %v", b, i, fwd[i])
		}
		pos = fwd[i].End
	}
	if pos != uint64(len(b)) {
		t.Fatalf("%q: decoding stopped at %d", b, pos)
	}
	if utf8.Valid(b) {
		runes := []rune(string(b))
		if len(runes) != len(fwd) {
			t.Fatalf("%q: %d chars, want %d", b, len(fwd), len(runes))
		}
		for i, r := range runes {
			if fwd[i].Rune != r {
				t.Fatalf("%q: char %d = %U, want %U", b, i, fwd[i].Rune, r)
			}
		}
	}
}

func TestCharsRandomAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte{'a', 0x80, 0x8F, 0x90, 0xA0, 0xBF, 0xC0, 0xC2, 0xDF, 0xE0, 0xE1, 0xED, 0xEF, 0xF0, 0xF3, 0xF4, 0xF5, 0xFF}
	for i := 0; i < 5000; i++ {
		b := make([]byte, rng.Intn(12))
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		checkCharsAgree(t, b)
	}
}

func FuzzChars(f *testing.F) {
	f.Add([]byte("ab\xFF\xF0\x90\x8D\xFF\x90\x8Dcd"))
	f.Add([]byte("h\u00E9llo w\u00F6rld \u20AC\U0001F600"))
	f.Add([]byte("\xED\xA0\x80\xF4\x90\x80\x80"))
	f.Fuzz(func(t *testing.T, b []byte) {
		checkCharsAgree(t, b)
	})
}

func BenchmarkCharsForward(b *testing.B) {
	data := []byte("The quick brown fox \u2013 jumps over the lazy dog \U0001F98A. ")
	for len(data) < 1<<16 {
		data = append(data, data...)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cs := NewChars(NewSliceCursor(data, 0))
		for {
			if _, ok := cs.Next(); !ok {
				break
			}
		}
	}
}
