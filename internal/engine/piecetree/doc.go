// Package piecetree stores text as a sequence of pieces, each a reference
// to a run of bytes in one of two buffers: the immutable original content
// and an append-only add buffer receiving all inserted text. The pieces
// live in a persistent red-black tree keyed by document position, so
// inserts and removals are O(log n) and never copy existing text.
//
// The package provides:
//
//   - Original content held in memory, memory mapped, or read on demand
//     in cached pages
//   - O(1) snapshots that stay valid while the tree keeps changing
//   - Zero-copy slices of any byte range
//   - Bidirectional iterators over bytes, chunks, UTF-8 characters,
//     grapheme clusters and lines
//   - Marks that follow a byte through edits
//
// Basic usage:
//
//	pt := piecetree.FromBytes([]byte("hello world"))
//	_ = pt.Insert(5, []byte(","))        // "hello, world"
//	_ = pt.Remove(piecetree.Span(0, 7)) // "world"
//
//	snap := pt.Snapshot()
//	go func() {
//	    defer snap.Release()
//	    fmt.Println(snap.String())
//	}()
//
// A PieceTree is not safe for concurrent use. Snapshots are, and the add
// buffer may be read through snapshots while the tree's owner appends.
package piecetree
