// Package storage holds the two byte stores behind a piece tree.
//
// # Original buffers
//
// An Original is the immutable content a document was opened with. It is
// never written after construction, so any number of readers may slice it
// concurrently. Three implementations exist and OpenFile picks one by file
// size:
//
//   - memory: the whole content in a byte slice
//   - mmap: a read-only shared mapping of the file (unix only)
//   - paged: ReadAt windows with a bounded LRU page cache
//
// Shared wraps an Original with a reference count so that a piece tree and
// the snapshots taken from it can outlive each other; the last Release
// closes the file or mapping.
//
// # Add buffer
//
// All inserted text is appended to one add buffer. AddWriter is the single
// writer; AddReader values are cheap to copy and may be used from any
// goroutine while the writer keeps appending. Storage is a list of buckets
// whose capacity doubles, so bytes never move once written and a slice
// returned by AddReader.Bytes stays valid for the life of the buffer.
package storage
