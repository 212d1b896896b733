package piecetree

// tree is a red-black tree of pieces ordered by document position. Each
// node caches the byte length of its left subtree.
type tree struct {
	root  *node
	count int
}

// clone returns a tree sharing t's nodes.
func (t *tree) clone() tree {
	t.root.incRef()
	return tree{root: t.root, count: t.count}
}

// reset drops t's reference to its nodes.
func (t *tree) reset() {
	t.root.decRef(true)
	t.root = nil
	t.count = 0
}

// insert places p so that its first byte lands at document position pos.
// mergeable permits extending the preceding add piece in place.
func (t *tree) insert(pos uint64, p Piece, mergeable bool) {
	_, split := t.ins(&t.root, pos, p, mergeable)
	t.blackenRoot()
	if split {
		// pos now falls on a piece boundary.
		t.ins(&t.root, pos, p, mergeable)
		t.blackenRoot()
	}
}

// ins inserts p at pos in the subtree at *np and returns how many bytes
// the subtree grew by. When pos lies strictly inside a piece, ins only
// splits that piece in two and reports split; nothing of p is inserted.
func (t *tree) ins(np **node, pos uint64, p Piece, mergeable bool) (grown uint64, split bool) {
	if *np == nil {
		*np = newNode(red, p)
		t.count++
		return p.Len, false
	}

	n := mut(np)
	end := n.leftLen + n.piece.Len
	switch {
	case pos <= n.leftLen:
		grown, split = t.ins(&n.left, pos, p, mergeable)
		n.leftLen += grown
	case pos == end:
		if mergeable && n.piece.canAppend(p) {
			n.piece.Len += p.Len
			return p.Len, false
		}
		grown, split = t.ins(&n.right, 0, p, mergeable)
	case pos > end:
		grown, split = t.ins(&n.right, pos-end, p, mergeable)
	default:
		right := n.piece.SplitRight(pos - n.leftLen)
		t.ins(&n.right, 0, right, false)
		split = true
	}
	balance(np)
	return grown, split
}

func (t *tree) blackenRoot() {
	switch {
	case t.root == nil:
	case t.root == doubleBlackLeaf:
		t.root = nil
	case t.root.color != black:
		mut(&t.root).color = black
	}
}

// balance repairs a red-red violation below a black or double black node,
// and the negative black patterns produced while deleting.
func balance(np **node) {
	n := *np
	if n.color != black && n.color != doubleBlack {
		return
	}
	top := red
	if n.color == doubleBlack {
		top = black
	}

	switch {
	case isRed(n.left) && isRed(n.left.left):
		rotateLeftLeft(np, top)
	case isRed(n.left) && isRed(n.left.right):
		rotateLeftRight(np, top)
	case isRed(n.right) && isRed(n.right.left):
		rotateRightLeft(np, top)
	case isRed(n.right) && isRed(n.right.right):
		rotateRightRight(np, top)
	case n.color == doubleBlack && isNegativeBlack(n.right) &&
		isBlackNode(n.right.left) && isBlackNode(n.right.right):
		rotateNegativeRight(np)
	case n.color == doubleBlack && isNegativeBlack(n.left) &&
		isBlackNode(n.left.left) && isBlackNode(n.left.right):
		rotateNegativeLeft(np)
	}
}

func isNegativeBlack(n *node) bool { return !isEmpty(n) && n.color == negativeBlack }

// In the rotations below the three nodes involved are named x, y, z in
// document order; y becomes the subtree root with x and z as children.

// z(y(x, c), d) => y(x, z(c, d))
func rotateLeftLeft(np **node, top color) {
	z := mut(np)
	y := mut(&z.left)
	x := mut(&y.left)
	z.leftLen -= y.leftLen + y.piece.Len
	z.left, y.right = y.right, z
	x.color, y.color, z.color = black, top, black
	*np = y
}

// z(x(a, y(b, c)), d) => y(x(a, b), z(c, d))
func rotateLeftRight(np **node, top color) {
	z := mut(np)
	x := mut(&z.left)
	y := mut(&x.right)
	z.leftLen -= x.leftLen + x.piece.Len + y.leftLen + y.piece.Len
	y.leftLen += x.leftLen + x.piece.Len
	x.right = y.left
	z.left = y.right
	y.left, y.right = x, z
	x.color, y.color, z.color = black, top, black
	*np = y
}

// x(a, z(y(b, c), d)) => y(x(a, b), z(c, d))
func rotateRightLeft(np **node, top color) {
	x := mut(np)
	z := mut(&x.right)
	y := mut(&z.left)
	z.leftLen -= y.leftLen + y.piece.Len
	y.leftLen += x.leftLen + x.piece.Len
	x.right = y.left
	z.left = y.right
	y.left, y.right = x, z
	x.color, y.color, z.color = black, top, black
	*np = y
}

// x(a, y(b, z)) => y(x(a, b), z)
func rotateRightRight(np **node, top color) {
	x := mut(np)
	y := mut(&x.right)
	z := mut(&y.right)
	y.leftLen += x.leftLen + x.piece.Len
	x.right = y.left
	y.left = x
	x.color, y.color, z.color = black, top, black
	*np = y
}

// x:BB(a, z:NB(y:B(b, c), d:B)) => y:B(x:B(a, b), balance(z:B(c, d:R)))
func rotateNegativeRight(np **node) {
	x := mut(np)
	z := mut(&x.right)
	y := mut(&z.left)
	d := mut(&z.right)
	z.leftLen -= y.leftLen + y.piece.Len
	y.leftLen += x.leftLen + x.piece.Len
	x.right = y.left
	z.left = y.right
	y.left, y.right = x, z
	x.color, y.color, z.color, d.color = black, black, black, red
	*np = y
	balance(&y.right)
}

// z:BB(x:NB(a:B, y:B(b, c)), d) => y:B(balance(x:B(a:R, b)), z:B(c, d))
func rotateNegativeLeft(np **node) {
	z := mut(np)
	x := mut(&z.left)
	a := mut(&x.left)
	y := mut(&x.right)
	z.leftLen -= x.leftLen + x.piece.Len + y.leftLen + y.piece.Len
	y.leftLen += x.leftLen + x.piece.Len
	x.right = y.left
	z.left = y.right
	y.left, y.right = x, z
	a.color, x.color, y.color, z.color = red, black, black, black
	*np = y
	balance(&y.left)
}
