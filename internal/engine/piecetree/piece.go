package piecetree

import "fmt"

// BufferKind names the buffer a piece points into.
type BufferKind uint8

const (
	// Original is the content the tree was constructed from.
	Original BufferKind = iota
	// Add is the append-only buffer of inserted text.
	Add
)

func (k BufferKind) String() string {
	switch k {
	case Original:
		return "original"
	case Add:
		return "add"
	default:
		return fmt.Sprintf("BufferKind(%d)", uint8(k))
	}
}

// Piece is a run of Len bytes at offset Pos of one buffer.
type Piece struct {
	Kind BufferKind
	Pos  uint64
	Len  uint64
}

// End returns the buffer offset just past the piece.
func (p Piece) End() uint64 { return p.Pos + p.Len }

func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d]", p.Kind, p.Pos, p.End())
}

// SplitLeft shrinks p to its bytes from at onward and returns the first
// at bytes.
func (p *Piece) SplitLeft(at uint64) Piece {
	left := Piece{Kind: p.Kind, Pos: p.Pos, Len: at}
	p.Pos += at
	p.Len -= at
	return left
}

// SplitRight shrinks p to its first at bytes and returns the rest.
func (p *Piece) SplitRight(at uint64) Piece {
	right := Piece{Kind: p.Kind, Pos: p.Pos + at, Len: p.Len - at}
	p.Len = at
	return right
}

// contains reports whether the buffer byte at off lies in p.
func (p Piece) contains(kind BufferKind, off uint64) bool {
	return p.Kind == kind && p.Pos <= off && off < p.End()
}

// canAppend reports whether q continues p in the add buffer.
func (p Piece) canAppend(q Piece) bool {
	return p.Kind == Add && q.Kind == Add && p.End() == q.Pos
}
