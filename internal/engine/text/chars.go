package text

import "unicode/utf8"

// Char is one decoded character and the bytes it came from.
type Char struct {
	Start, End uint64
	Rune       rune
}

// Len returns the encoded length in bytes.
func (c Char) Len() uint64 { return c.End - c.Start }

// Byte classes.
const (
	clASCII = iota // 00..7F
	clCont1        // 80..8F
	clCont2        // 90..9F
	clCont3        // A0..BF
	clBad          // C0, C1, F5..FF
	clLead2        // C2..DF
	clE0
	clLead3 // E1..EC, EE..EF
	clED
	clF0
	clLead4 // F1..F3
	clF4
	numClasses
)

var byteClass = func() (t [256]uint8) {
	set := func(lo, hi int, c uint8) {
		for b := lo; b <= hi; b++ {
			t[b] = c
		}
	}
	set(0x00, 0x7F, clASCII)
	set(0x80, 0x8F, clCont1)
	set(0x90, 0x9F, clCont2)
	set(0xA0, 0xBF, clCont3)
	set(0xC0, 0xC1, clBad)
	set(0xC2, 0xDF, clLead2)
	set(0xE0, 0xE0, clE0)
	set(0xE1, 0xEC, clLead3)
	set(0xED, 0xED, clED)
	set(0xEE, 0xEF, clLead3)
	set(0xF0, 0xF0, clF0)
	set(0xF1, 0xF3, clLead4)
	set(0xF4, 0xF4, clF4)
	set(0xF5, 0xFF, clBad)
	return t
}()

func isCont(c uint8) bool { return c == clCont1 || c == clCont2 || c == clCont3 }

// firstContOK reports whether cont may directly follow lead. E0, ED, F0
// and F4 narrow the range of their first continuation byte to exclude
// overlong forms, surrogates and values above U+10FFFF.
func firstContOK(lead, cont uint8) bool {
	switch lead {
	case clE0:
		return cont == clCont3
	case clED:
		return cont == clCont1 || cont == clCont2
	case clF0:
		return cont == clCont2 || cont == clCont3
	case clF4:
		return cont == clCont1
	}
	return isCont(cont)
}

// Forward states. fAccept doubles as the start state.
const (
	fAccept = iota
	fReject
	fNeed1
	fNeed2
	fNeed3
	fE0
	fED
	fF0
	fF4
	numFwdStates
)

var fwdTable = func() (t [numFwdStates][numClasses]uint8) {
	for s := range t {
		for c := range t[s] {
			t[s][c] = fReject
		}
	}
	t[fAccept][clASCII] = fAccept
	t[fAccept][clLead2] = fNeed1
	t[fAccept][clE0] = fE0
	t[fAccept][clLead3] = fNeed2
	t[fAccept][clED] = fED
	t[fAccept][clF0] = fF0
	t[fAccept][clLead4] = fNeed3
	t[fAccept][clF4] = fF4
	for _, c := range []uint8{clCont1, clCont2, clCont3} {
		t[fNeed1][c] = fAccept
		t[fNeed2][c] = fNeed1
		t[fNeed3][c] = fNeed2
	}
	t[fE0][clCont3] = fNeed1
	t[fED][clCont1] = fNeed1
	t[fED][clCont2] = fNeed1
	t[fF0][clCont2] = fNeed2
	t[fF0][clCont3] = fNeed2
	t[fF4][clCont1] = fNeed2
	return t
}()

// Reverse states. r1..r3 count continuation bytes read so far and carry
// the class of the one nearest the lead, which decides whether a
// constrained lead byte accepts it.
const (
	rStart = iota
	r1c1
	r1c2
	r1c3
	r2c1
	r2c2
	r2c3
	r3c1
	r3c2
	r3c3
	rDone    // complete character
	rPartial // valid but truncated prefix: one U+FFFD over all bytes read
	rReject  // only the last byte is an error
	numRevStates
)

var revTable = func() (t [numRevStates][numClasses]uint8) {
	for s := range t {
		for c := range t[s] {
			t[s][c] = rReject
		}
	}
	t[rStart][clASCII] = rDone
	t[rStart][clCont1] = r1c1
	t[rStart][clCont2] = r1c2
	t[rStart][clCont3] = r1c3

	for depth, base := range []uint8{r1c1, r2c1, r3c1} {
		for k := uint8(0); k < 3; k++ {
			s := base + k
			cont := clCont1 + k
			for _, lead := range []uint8{clLead2, clE0, clLead3, clED, clF0, clLead4, clF4} {
				if !firstContOK(lead, cont) {
					continue
				}
				need := 1
				switch lead {
				case clE0, clLead3, clED:
					need = 2
				case clF0, clLead4, clF4:
					need = 3
				}
				switch have := depth + 1; {
				case have == need:
					t[s][lead] = rDone
				case have < need:
					t[s][lead] = rPartial
				}
			}
			if depth < 2 {
				next := base + 3
				t[s][clCont1] = next
				t[s][clCont2] = next + 1
				t[s][clCont3] = next + 2
			}
		}
	}
	return t
}()

// Chars decodes UTF-8 from a ByteCursor.
type Chars struct {
	cur ByteCursor
}

// NewChars returns a decoder reading from cur. cur should sit on a
// character boundary.
func NewChars(cur ByteCursor) *Chars {
	return &Chars{cur: cur}
}

// Pos returns the byte position of the decoder.
func (c *Chars) Pos() uint64 { return c.cur.Pos() }

// Next decodes the character after the position.
func (c *Chars) Next() (Char, bool) {
	start := c.cur.Pos()
	b, ok := c.cur.Next()
	if !ok {
		return Char{}, false
	}

	class := byteClass[b]
	st := fwdTable[fAccept][class]
	switch st {
	case fAccept:
		return Char{Start: start, End: start + 1, Rune: rune(b)}, true
	case fReject:
		return Char{Start: start, End: start + 1, Rune: utf8.RuneError}, true
	}

	r := leadBits(b, class)
	for {
		b, ok = c.cur.Next()
		if !ok {
			return Char{Start: start, End: c.cur.Pos(), Rune: utf8.RuneError}, true
		}
		next := fwdTable[st][byteClass[b]]
		if next == fReject {
			// Resume at the offending byte.
			c.cur.Prev()
			return Char{Start: start, End: c.cur.Pos(), Rune: utf8.RuneError}, true
		}
		r = r<<6 | rune(b&0x3F)
		if next == fAccept {
			return Char{Start: start, End: c.cur.Pos(), Rune: r}, true
		}
		st = next
	}
}

// Prev decodes the character before the position.
func (c *Chars) Prev() (Char, bool) {
	end := c.cur.Pos()
	var buf [4]byte
	n := 0
	st := uint8(rStart)
	for {
		b, ok := c.cur.Prev()
		if !ok {
			if n == 0 {
				return Char{}, false
			}
			st = rReject
			break
		}
		buf[3-n] = b
		n++
		st = revTable[st][byteClass[b]]
		if st >= rDone {
			break
		}
	}

	switch st {
	case rDone:
		seq := buf[4-n:]
		r := leadBits(seq[0], byteClass[seq[0]])
		for _, b := range seq[1:] {
			r = r<<6 | rune(b&0x3F)
		}
		return Char{Start: end - uint64(n), End: end, Rune: r}, true
	case rPartial:
		return Char{Start: end - uint64(n), End: end, Rune: utf8.RuneError}, true
	}

	// Step forward again over everything but the last byte.
	for c.cur.Pos() < end-1 {
		if _, ok := c.cur.Next(); !ok {
			break
		}
	}
	return Char{Start: end - 1, End: end, Rune: utf8.RuneError}, true
}

func leadBits(b byte, class uint8) rune {
	switch class {
	case clLead2:
		return rune(b & 0x1F)
	case clE0, clLead3, clED:
		return rune(b & 0x0F)
	case clF0, clLead4, clF4:
		return rune(b & 0x07)
	}
	return rune(b)
}
