package piecetree

import "sync/atomic"

type color uint8

const (
	red color = iota
	black
	// doubleBlack and negativeBlack only exist while a deletion is
	// rebalancing.
	doubleBlack
	negativeBlack
)

func (c color) blacker() color {
	switch c {
	case negativeBlack:
		return red
	case red:
		return black
	}
	return doubleBlack
}

func (c color) redder() color {
	switch c {
	case doubleBlack:
		return black
	case black:
		return red
	}
	return negativeBlack
}

// node is a tree node. A node may be shared by several trees; ref counts
// the parents and roots pointing at it. Only nodes with a single reference
// are ever written, see mut.
type node struct {
	ref     int32
	color   color
	piece   Piece
	leftLen uint64
	left    *node
	right   *node
}

// doubleBlackLeaf is the empty subtree left behind when a black leaf-level
// node is deleted. It is never mutated and never reference counted.
var doubleBlackLeaf = &node{color: doubleBlack}

func newNode(c color, p Piece) *node {
	return &node{ref: 1, color: c, piece: p}
}

func isEmpty(n *node) bool { return n == nil || n == doubleBlackLeaf }

func isRed(n *node) bool { return !isEmpty(n) && n.color == red }

func isBlackNode(n *node) bool { return !isEmpty(n) && n.color == black }

func isDoubleBlack(n *node) bool { return n != nil && n.color == doubleBlack }

// mut returns a node that may be written in place of *n, cloning it first
// when it is shared.
func mut(n **node) *node {
	if atomic.LoadInt32(&(*n).ref) == 1 {
		return *n
	}
	c := (*n).clone()
	// Recursive because another holder may drop its reference
	// concurrently.
	(*n).decRef(true)
	*n = c
	return c
}

func (n *node) incRef() {
	if isEmpty(n) {
		return
	}
	atomic.AddInt32(&n.ref, 1)
}

func (n *node) decRef(recursive bool) {
	if isEmpty(n) {
		return
	}
	if atomic.AddInt32(&n.ref, -1) > 0 {
		return
	}
	if recursive {
		n.left.decRef(true)
		n.right.decRef(true)
	}
}

// clone returns an unshared copy of n holding new references to its
// children. n.ref is not read.
func (n *node) clone() *node {
	c := &node{
		ref:     1,
		color:   n.color,
		piece:   n.piece,
		leftLen: n.leftLen,
		left:    n.left,
		right:   n.right,
	}
	c.left.incRef()
	c.right.incRef()
	return c
}

// length returns the byte length of the subtree rooted at n.
func (n *node) length() uint64 {
	var total uint64
	for ; !isEmpty(n); n = n.right {
		total += n.leftLen + n.piece.Len
	}
	return total
}
