package piecetree

// remove deletes n bytes starting at document position pos. Each pass
// removes the overlap with one piece.
func (t *tree) remove(pos, n uint64) {
	for n > 0 {
		removed := t.del(&t.root, pos, n)
		t.blackenRoot()
		if removed == 0 {
			return
		}
		n -= removed
	}
}

// del removes up to want bytes at pos from the single piece that holds
// pos and returns the number removed.
func (t *tree) del(np **node, pos, want uint64) uint64 {
	if isEmpty(*np) {
		return 0
	}
	n := mut(np)
	end := n.leftLen + n.piece.Len

	var removed uint64
	switch {
	case pos < n.leftLen:
		removed = t.del(&n.left, pos, want)
		n.leftLen -= removed
	case pos >= end:
		removed = t.del(&n.right, pos-end, want)
	default:
		off := pos - n.leftLen
		removed = min(want, n.piece.Len-off)
		switch {
		case off == 0 && removed == n.piece.Len:
			t.removeNode(np)
			return removed
		case off == 0:
			n.piece.SplitLeft(removed)
		case off+removed == n.piece.Len:
			n.piece.SplitRight(off)
		default:
			tail := n.piece.SplitRight(off + removed)
			n.piece.SplitRight(off)
			t.ins(&n.right, 0, tail, false)
		}
	}
	bubble(np)
	return removed
}

// removeNode unlinks the node at *np, which must be writable.
func (t *tree) removeNode(np **node) {
	n := *np
	switch {
	case isEmpty(n.left) && isEmpty(n.right):
		if n.color == red {
			*np = nil
		} else {
			*np = doubleBlackLeaf
		}
	case isEmpty(n.left):
		// A black node with one child; the child is red.
		r := mut(&n.right)
		r.color = black
		*np = r
	case isEmpty(n.right):
		l := mut(&n.left)
		l.color = black
		*np = l
	default:
		// Replace the piece with its predecessor's and delete that node.
		n.piece = t.removeMax(&n.left)
		n.leftLen -= n.piece.Len
		bubble(np)
		return
	}
	t.count--
}

// removeMax deletes the last node of the subtree at *np and returns its
// piece.
func (t *tree) removeMax(np **node) Piece {
	n := mut(np)
	if isEmpty(n.right) {
		p := n.piece
		t.removeNode(np)
		return p
	}
	p := t.removeMax(&n.right)
	bubble(np)
	return p
}

// bubble moves a double black child's extra blackness up into the node at
// *np, then rebalances.
func bubble(np **node) {
	n := *np
	if isDoubleBlack(n.left) || isDoubleBlack(n.right) {
		n = mut(np)
		n.color = n.color.blacker()
		redden(&n.left)
		redden(&n.right)
	}
	balance(np)
}

func redden(np **node) {
	switch {
	case *np == nil:
	case *np == doubleBlackLeaf:
		*np = nil
	default:
		n := mut(np)
		n.color = n.color.redder()
	}
}
