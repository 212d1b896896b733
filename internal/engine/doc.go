// Package engine provides Document, a thread-safe editing facade over a
// piece tree.
//
// A Document combines the piece tree with snapshot-based undo/redo,
// named checkpoints, marks and pattern search. Reads take a shared lock
// and edits an exclusive one, so a Document may be used from several
// goroutines. Long-running readers should take a Snapshot instead and
// read it without holding the document.
//
// # Basic Usage
//
//	d := engine.New()
//	defer d.Close()
//
//	d.Insert(0, []byte("Hello, World!"))
//	d.Replace(7, 12, []byte("Go"))   // "Hello, Go!"
//	d.Undo()                          // "Hello, World!"
//
// # Marks
//
// A mark follows the byte it was placed on through later edits, including
// undo and redo:
//
//	id, _ := d.AddMark(7)
//	d.Insert(0, []byte(">> "))
//	pos, _ := d.MarkPos(id) // 10
//
// # Checkpoints
//
// Checkpoint stores the current content under a name. RestoreCheckpoint
// brings it back as one undoable step, and DiffSinceCheckpoint reports
// the line changes made since.
//
// # Files
//
// OpenFile loads a document from disk in the storage mode chosen by the
// tree options. With WithWatch the source file is watched and
// SourceChanged reports modification by another program.
package engine
