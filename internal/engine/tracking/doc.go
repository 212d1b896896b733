// Package tracking keeps named checkpoints of a document and compares
// document states line by line.
//
// A checkpoint holds a piece tree snapshot, so creating one is O(1) and
// it shares structure with the live document:
//
//	m := tracking.NewManager()
//	id := m.Create("before-format", pt.Snapshot(), revision)
//	...
//	cp, _ := m.GetByName("before-format")
//	result := tracking.Diff(cp.Snapshot(), current, tracking.DefaultDiffOptions())
//	fmt.Print(tracking.UnifiedDiff(result, "before", "after"))
//
// The Manager owns the snapshots handed to it and releases them when a
// checkpoint is replaced, deleted or cleared. All Manager operations are
// thread-safe.
package tracking
