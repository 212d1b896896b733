package piecetree

import "testing"

// checkTree verifies the red-black and length invariants of pt's tree and
// that its view is in sync.
func checkTree(t *testing.T, pt *PieceTree) {
	t.Helper()
	root := pt.tree.root
	if root != pt.root {
		t.Fatalf("view root out of sync with tree")
	}
	if root == doubleBlackLeaf {
		t.Fatalf("root left as double black leaf")
	}
	if root == nil {
		if pt.tree.count != 0 || pt.Len() != 0 {
			t.Fatalf("empty tree with count %d, len %d", pt.tree.count, pt.Len())
		}
		return
	}
	if root.color != black {
		t.Fatalf("root color %d, want black", root.color)
	}

	count := 0
	var walk func(n *node) (uint64, int)
	walk = func(n *node) (uint64, int) {
		if n == nil {
			return 0, 1
		}
		if n == doubleBlackLeaf {
			t.Fatalf("double black leaf left in tree")
		}
		switch n.color {
		case red:
			if isRed(n.left) || isRed(n.right) {
				t.Fatalf("red node %v has a red child", n.piece)
			}
		case black:
		default:
			t.Fatalf("node %v has transient color %d", n.piece, n.color)
		}
		if n.piece.Len == 0 {
			t.Fatalf("empty piece in tree")
		}
		if n.ref < 1 {
			t.Fatalf("node %v has ref %d", n.piece, n.ref)
		}
		count++

		ll, lh := walk(n.left)
		rl, rh := walk(n.right)
		if ll != n.leftLen {
			t.Fatalf("node %v leftLen %d, left subtree holds %d", n.piece, n.leftLen, ll)
		}
		if lh != rh {
			t.Fatalf("node %v black heights differ: %d vs %d", n.piece, lh, rh)
		}
		if n.color == black {
			lh++
		}
		return ll + n.piece.Len + rl, lh
	}
	total, _ := walk(root)
	if total != pt.Len() {
		t.Fatalf("tree holds %d bytes, Len() = %d", total, pt.Len())
	}
	if total != root.length() {
		t.Fatalf("length() = %d, want %d", root.length(), total)
	}
	if count != pt.tree.count {
		t.Fatalf("tree has %d nodes, count = %d", count, pt.tree.count)
	}
}

// checkContent verifies pt reads back as want through every iterator.
func checkContent(t *testing.T, pt *PieceTree, want string) {
	t.Helper()
	if got := pt.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if pt.Len() != uint64(len(want)) {
		t.Fatalf("Len() = %d, want %d", pt.Len(), len(want))
	}

	b := pt.Bytes()
	for i := 0; i < len(want); i++ {
		c, ok := b.Next()
		if !ok || c != want[i] {
			t.Fatalf("Bytes.Next at %d = %q, %v; want %q", i, c, ok, want[i])
		}
	}
	if _, ok := b.Next(); ok {
		t.Fatalf("Bytes.Next past end succeeded")
	}
	for i := len(want) - 1; i >= 0; i-- {
		c, ok := b.Prev()
		if !ok || c != want[i] {
			t.Fatalf("Bytes.Prev at %d = %q, %v; want %q", i, c, ok, want[i])
		}
	}
	if _, ok := b.Prev(); ok {
		t.Fatalf("Bytes.Prev before start succeeded")
	}

	var back []byte
	ch, err := pt.ChunksAt(pt.Len())
	if err != nil {
		t.Fatal(err)
	}
	for {
		c, ok := ch.Prev()
		if !ok {
			break
		}
		back = append(append([]byte(nil), c...), back...)
	}
	if string(back) != want {
		t.Fatalf("chunks backward = %q, want %q", back, want)
	}
}
