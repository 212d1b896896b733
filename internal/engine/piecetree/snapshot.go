package piecetree

import "sync/atomic"

// Snapshot is an immutable copy of a PieceTree's content. Taking one is
// O(1); later edits to the tree copy the nodes they touch instead of
// changing shared ones. A Snapshot is safe for concurrent reads and stays
// readable after the tree is closed, until it is released.
type Snapshot struct {
	view
	count    int
	released atomic.Bool
}

// PieceCount returns the number of pieces.
func (s *Snapshot) PieceCount() int { return s.count }

// Released reports whether Release has been called.
func (s *Snapshot) Released() bool { return s.released.Load() }

// Release drops the snapshot's references. Further reads are invalid.
// Repeated calls are no-ops.
func (s *Snapshot) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.root.decRef(true)
	_ = s.src.orig.Release()
}
