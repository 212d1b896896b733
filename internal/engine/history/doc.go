// Package history provides undo/redo for a piece tree.
//
// Every recorded edit keeps two O(1) snapshots of the document: one taken
// before the edit and one after. Undo restores the first, redo the second.
// Because snapshots share structure with the live tree, a deep history
// costs memory in proportion to what the edits touched, not to document
// size.
//
//	h := history.NewHistory(1000)
//	err := h.Record(pt, "insert", func() error {
//	    return pt.InsertString(0, "hello")
//	})
//	_ = h.Undo(pt)
//	_ = h.Redo(pt)
//
// # Grouping
//
// Edits recorded between BeginGroup and EndGroup undo as one step:
//
//	h.BeginGroup("replace all")
//	// ... several Record calls ...
//	h.EndGroup()
//
// Evicted and discarded entries release their snapshots, so a History
// must be cleared before the tree's storage can be closed.
package history
