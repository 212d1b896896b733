package piecetree

type iterState uint8

const (
	onPiece iterState = iota
	beforeFirst
	afterLast
)

// pieceIter walks the pieces overlapping the window [lo, hi) of a tree in
// both directions. It keeps the path from the root to the current node so
// that stepping is amortised O(1).
type pieceIter struct {
	root   *node
	lo, hi uint64

	stack []*node
	cur   *node
	start uint64 // document position of cur's piece
	state iterState
}

func newPieceIter(root *node, lo, hi uint64) pieceIter {
	return pieceIter{root: root, lo: lo, hi: hi}
}

// seek positions the iterator on the piece holding document position pos.
// When pos is the boundary between two pieces and the earlier one has no
// right subtree, the earlier one is chosen, so seeking to the end of the
// document lands on its last piece.
func (it *pieceIter) seek(pos uint64) {
	it.stack = it.stack[:0]
	it.cur = nil
	it.state = onPiece
	it.start = 0

	n := it.root
	var base uint64
	for !isEmpty(n) {
		switch end := n.leftLen + n.piece.Len; {
		case pos < n.leftLen:
			it.stack = append(it.stack, n)
			n = n.left
		case pos < end || (pos == end && isEmpty(n.right)):
			it.cur = n
			it.start = base + n.leftLen
			return
		default:
			it.stack = append(it.stack, n)
			pos -= end
			base += end
			n = n.right
		}
	}
}

// get returns the current piece clipped to the window and its document
// position.
func (it *pieceIter) get() (Piece, uint64, bool) {
	if it.cur == nil || it.state != onPiece {
		return Piece{}, 0, false
	}
	p, s := it.cur.piece, it.start
	cs := max(s, it.lo)
	ce := min(s+p.Len, it.hi)
	return Piece{Kind: p.Kind, Pos: p.Pos + (cs - s), Len: ce - cs}, cs, true
}

// next advances to the following piece. Past the last piece it reports
// false and a later prev returns to that last piece.
func (it *pieceIter) next() bool {
	switch {
	case it.cur == nil || it.state == afterLast:
		return false
	case it.state == beforeFirst:
		it.state = onPiece
		return true
	}
	if it.start+it.cur.piece.Len >= it.hi {
		it.state = afterLast
		return false
	}
	it.start += it.cur.piece.Len

	n := it.cur
	if !isEmpty(n.right) {
		it.stack = append(it.stack, n)
		n = n.right
		for !isEmpty(n.left) {
			it.stack = append(it.stack, n)
			n = n.left
		}
	} else {
		for {
			parent := it.stack[len(it.stack)-1]
			it.stack = it.stack[:len(it.stack)-1]
			child := n
			n = parent
			if parent.left == child {
				break
			}
		}
	}
	it.cur = n
	return true
}

// prev steps back to the preceding piece, mirroring next.
func (it *pieceIter) prev() bool {
	switch {
	case it.cur == nil || it.state == beforeFirst:
		return false
	case it.state == afterLast:
		it.state = onPiece
		return true
	}
	if it.start <= it.lo {
		it.state = beforeFirst
		return false
	}

	n := it.cur
	if !isEmpty(n.left) {
		it.stack = append(it.stack, n)
		n = n.left
		for !isEmpty(n.right) {
			it.stack = append(it.stack, n)
			n = n.right
		}
	} else {
		for {
			parent := it.stack[len(it.stack)-1]
			it.stack = it.stack[:len(it.stack)-1]
			child := n
			n = parent
			if parent.right == child {
				break
			}
		}
	}
	it.cur = n
	it.start -= n.piece.Len
	return true
}
