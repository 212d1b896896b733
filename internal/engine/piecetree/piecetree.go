package piecetree

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/storage"
	"github.com/dshills/piecetree/internal/logging"
)

// addWriter is the write side of the add buffer.
type addWriter interface {
	Append(p []byte) (pos uint64, fresh bool, err error)
	Len() uint64
}

// PieceTree is an editable byte sequence. Read methods come from the
// embedded view and always reflect the latest edit; iterators obtained
// before an edit must not be used after it.
type PieceTree struct {
	view
	tree   tree
	add    addWriter
	mode   storage.Mode
	opts   options
	log    *logging.Logger
	closed bool
}

// New returns an empty PieceTree.
func New(opts ...Option) *PieceTree {
	return newTree(storage.FromBytes(nil), storage.ModeMemory, applyOptions(opts))
}

// FromBytes returns a PieceTree holding b. The tree keeps b; the caller
// must not modify it afterwards.
func FromBytes(b []byte, opts ...Option) *PieceTree {
	return newTree(storage.FromBytes(b), storage.ModeMemory, applyOptions(opts))
}

// FromReader returns a PieceTree holding everything read from r.
func FromReader(r io.Reader, opts ...Option) (*PieceTree, error) {
	orig, err := storage.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read original")
	}
	return newTree(orig, storage.ModeMemory, applyOptions(opts)), nil
}

// Open returns a PieceTree over the file at path. The storage mode option
// decides how the file is read; in auto mode small files are loaded into
// memory and large ones are memory mapped.
func Open(path string, opts ...Option) (*PieceTree, error) {
	o := applyOptions(opts)
	orig, mode, err := storage.OpenFile(path, o.open)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("opened %s as %s (%d bytes)", path, mode, orig.Len())
	return newTree(orig, mode, o), nil
}

// OpenMmap returns a PieceTree over the memory mapped file at path. The
// file must not be truncated while mapped.
func OpenMmap(path string, opts ...Option) (*PieceTree, error) {
	return Open(path, append(opts, WithStorageMode(storage.ModeMmap))...)
}

// OpenPaged returns a PieceTree reading the file at path in cached pages.
func OpenPaged(path string, opts ...Option) (*PieceTree, error) {
	return Open(path, append(opts, WithStorageMode(storage.ModePaged))...)
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newTree(orig storage.Original, mode storage.Mode, o options) *PieceTree {
	add := storage.NewAddBuffer(o.firstBucket)
	pt := &PieceTree{
		view: view{src: source{orig: storage.Share(orig), add: add.Reader()}},
		add:  add,
		mode: mode,
		opts: o,
		log:  o.logger.WithComponent("piecetree"),
	}

	// Pieces of paged content never cross a page.
	size, step := orig.Len(), o.maxPieceSize
	if mode == storage.ModePaged && o.open.PageSize < step {
		step = o.open.PageSize
	}
	for off := uint64(0); off < size; off += step {
		pt.tree.insert(off, Piece{Kind: Original, Pos: off, Len: min(step, size-off)}, false)
	}
	pt.sync(size)
	pt.log.Debug("loaded %d bytes in %d pieces", size, pt.tree.count)
	return pt
}

func (pt *PieceTree) sync(length uint64) {
	pt.root = pt.tree.root
	pt.hi = length
}

// Mode returns how the original content is stored.
func (pt *PieceTree) Mode() storage.Mode { return pt.mode }

// PieceCount returns the number of pieces.
func (pt *PieceTree) PieceCount() int { return pt.tree.count }

// AddLen returns the number of bytes ever inserted.
func (pt *PieceTree) AddLen() uint64 { return pt.add.Len() }

// Insert inserts b at pos.
func (pt *PieceTree) Insert(pos uint64, b []byte) error {
	if pt.closed {
		return ErrClosed
	}
	if err := pt.check(pos); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	off, fresh, err := pt.add.Append(b)
	if err != nil {
		return err
	}
	pt.tree.insert(pos, Piece{Kind: Add, Pos: off, Len: uint64(len(b))}, !fresh)
	pt.sync(pt.Len() + uint64(len(b)))
	return nil
}

// InsertString inserts s at pos.
func (pt *PieceTree) InsertString(pos uint64, s string) error {
	return pt.Insert(pos, []byte(s))
}

// Append inserts b at the end.
func (pt *PieceTree) Append(b []byte) error {
	return pt.Insert(pt.Len(), b)
}

// InsertMulti inserts b at each of positions, which refer to the content
// before the call. The bytes are written to the add buffer once and shared
// by every insertion. Inserting at a position shifts later positions,
// including equal ones, so inserts at the same position come out in the
// order given. On success each element of positions is updated to the
// final start of its copy.
func (pt *PieceTree) InsertMulti(positions []uint64, b []byte) error {
	if pt.closed {
		return ErrClosed
	}
	for _, pos := range positions {
		if err := pt.check(pos); err != nil {
			return err
		}
	}
	if len(b) == 0 || len(positions) == 0 {
		return nil
	}
	off, fresh, err := pt.add.Append(b)
	if err != nil {
		return err
	}

	n := uint64(len(b))
	pos := positions
	length := pt.Len()
	for i := range pos {
		pt.tree.insert(pos[i], Piece{Kind: Add, Pos: off, Len: n}, i == 0 && !fresh)
		length += n
		for j := range pos {
			if j != i && pos[j] >= pos[i] {
				pos[j] += n
			}
		}
	}
	pt.sync(length)
	return nil
}

// Remove deletes the bytes in r.
func (pt *PieceTree) Remove(r Range) error {
	if pt.closed {
		return ErrClosed
	}
	start, end, err := r.Resolve(pt.Len())
	if err != nil {
		return err
	}
	if start == end {
		return nil
	}
	pt.tree.remove(start, end-start)
	pt.sync(pt.Len() - (end - start))
	return nil
}

// Replace removes r and inserts b at its start. The content is unchanged
// when it fails.
func (pt *PieceTree) Replace(r Range, b []byte) error {
	if pt.closed {
		return ErrClosed
	}
	start, end, err := r.Resolve(pt.Len())
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return pt.Remove(Span(start, end))
	}
	off, fresh, err := pt.add.Append(b)
	if err != nil {
		return err
	}
	length := pt.Len()
	if start < end {
		pt.tree.remove(start, end-start)
		length -= end - start
	}
	pt.tree.insert(start, Piece{Kind: Add, Pos: off, Len: uint64(len(b))}, !fresh)
	pt.sync(length + uint64(len(b)))
	return nil
}

// Snapshot returns an immutable copy of the current content. The caller
// must release it.
func (pt *PieceTree) Snapshot() *Snapshot {
	c := pt.tree.clone()
	return &Snapshot{
		view: view{
			src:  source{orig: pt.src.orig.Acquire(), add: pt.src.add.Clone()},
			root: c.root,
			hi:   pt.Len(),
		},
		count: c.count,
	}
}

// Restore replaces the content with that of s, which must have been taken
// from pt. s stays valid.
func (pt *PieceTree) Restore(s *Snapshot) error {
	switch {
	case pt.closed:
		return ErrClosed
	case s.Released():
		return ErrReleased
	case !s.src.add.Same(pt.src.add) || s.src.orig != pt.src.orig:
		return ErrForeignSnapshot
	}
	s.root.incRef()
	pt.tree.reset()
	pt.tree = tree{root: s.root, count: s.count}
	pt.sync(s.Len())
	return nil
}

// Slice returns a read-only view of r that stays valid through later
// edits and after Close. The caller must release it.
func (pt *PieceTree) Slice(r Range) (*Slice, error) {
	start, end, err := r.Resolve(pt.Len())
	if err != nil {
		return nil, err
	}
	c := pt.tree.clone()
	v := view{
		src:  source{orig: pt.src.orig.Acquire(), add: pt.src.add.Clone()},
		root: c.root,
		lo:   start,
		hi:   end,
	}
	return &Slice{view: v, owned: true}, nil
}

// SaveTo writes the content to the file at path through a temporary file
// in the same directory, so a tree reading path itself stays intact.
func (pt *PieceTree) SaveTo(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".piecetree-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmp := f.Name()
	if _, err := pt.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}

// Close releases the tree's references to its storage. Snapshots and
// owned slices keep the storage open until they are released.
func (pt *PieceTree) Close() error {
	if pt.closed {
		return nil
	}
	pt.closed = true
	pt.tree.reset()
	pt.sync(0)
	return pt.src.orig.Release()
}
