package engine

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/history"
	"github.com/dshills/piecetree/internal/engine/piecetree"
	"github.com/dshills/piecetree/internal/engine/search"
	"github.com/dshills/piecetree/internal/engine/storage"
	"github.com/dshills/piecetree/internal/engine/tracking"
	"github.com/dshills/piecetree/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Match is the byte range of a search match.
	Match = search.Match

	// MarkPos is a resolved mark position.
	MarkPos = piecetree.MarkPos

	// DiffResult contains the result of a diff operation.
	DiffResult = tracking.DiffResult

	// DiffOptions configures diff computation.
	DiffOptions = tracking.DiffOptions

	// CheckpointID identifies a checkpoint.
	CheckpointID = tracking.CheckpointID
)

// MarkID identifies a mark placed with AddMark.
type MarkID uint64

// Document is a thread-safe editable text backed by a piece tree.
type Document struct {
	mu sync.RWMutex

	pt          *piecetree.PieceTree
	history     *history.History
	checkpoints *tracking.Manager
	marks       map[MarkID]*piecetree.Mark
	nextMark    MarkID

	revision      uint64
	savedRevision uint64

	path  string
	watch *sourceWatcher

	opts   options
	log    *logging.Logger
	closed bool
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) treeOptions() []piecetree.Option {
	return append([]piecetree.Option{piecetree.WithLogger(o.logger)}, o.tree...)
}

func newDocument(pt *piecetree.PieceTree, path string, o options) *Document {
	return &Document{
		pt:          pt,
		history:     history.NewHistory(o.maxUndoEntries),
		checkpoints: tracking.NewManager(),
		marks:       make(map[MarkID]*piecetree.Mark),
		path:        path,
		opts:        o,
		log:         o.logger.WithComponent("engine"),
	}
}

// New creates an empty Document.
func New(opts ...Option) *Document {
	o := applyOptions(opts)
	return newDocument(piecetree.New(o.treeOptions()...), "", o)
}

// NewFromBytes creates a Document holding b. The caller must not modify b
// afterwards.
func NewFromBytes(b []byte, opts ...Option) *Document {
	o := applyOptions(opts)
	return newDocument(piecetree.FromBytes(b, o.treeOptions()...), "", o)
}

// NewFromReader creates a Document holding everything read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	o := applyOptions(opts)
	pt, err := piecetree.FromReader(r, o.treeOptions()...)
	if err != nil {
		return nil, err
	}
	return newDocument(pt, "", o), nil
}

// OpenFile creates a Document over the file at path. A watcher that cannot
// be started is logged and otherwise ignored.
func OpenFile(path string, opts ...Option) (*Document, error) {
	o := applyOptions(opts)
	pt, err := piecetree.Open(path, o.treeOptions()...)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	d := newDocument(pt, path, o)
	if o.watch {
		w, err := newSourceWatcher(path, d.log)
		if err != nil {
			d.log.Warn("not watching %s: %v", path, err)
		} else {
			d.watch = w
		}
	}
	d.log.Debug("opened %s (%s, %d bytes)", path, pt.Mode(), pt.Len())
	return d, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the content length in bytes.
func (d *Document) Len() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pt.Len()
}

// IsEmpty reports whether the document is empty.
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Text returns the entire content.
// For large documents, prefer TextRange, Save or a Snapshot.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pt.String()
}

// TextRange returns the content in [start, end).
func (d *Document) TextRange(start, end uint64) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return "", ErrClosed
	}
	b, err := d.pt.Text(piecetree.Span(start, end))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PieceCount returns the number of pieces in the underlying tree.
func (d *Document) PieceCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pt.PieceCount()
}

// Snapshot returns an immutable view of the current content. The caller
// must release it.
func (d *Document) Snapshot() (*piecetree.Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}
	return d.pt.Snapshot(), nil
}

// Revision returns a counter that increases with every change to the
// content, including undo and redo.
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Modified reports whether the content changed since it was opened or
// last saved to a file.
func (d *Document) Modified() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision != d.savedRevision
}

// Path returns the source file path, or "" for an in-memory document.
func (d *Document) Path() string {
	return d.path
}

// Mode returns the storage mode backing the original content.
func (d *Document) Mode() storage.Mode {
	return d.pt.Mode()
}

// IsReadOnly reports whether edits are rejected.
func (d *Document) IsReadOnly() bool {
	return d.opts.readOnly
}

// ============================================================================
// Write Operations
// ============================================================================

// edit runs fn as one undoable change.
func (d *Document) edit(name string, fn func() error) error {
	if d.closed {
		return ErrClosed
	}
	if d.opts.readOnly {
		return ErrReadOnly
	}
	if err := d.history.Record(d.pt, name, fn); err != nil {
		return err
	}
	d.revision++
	return nil
}

// Insert inserts b at pos.
func (d *Document) Insert(pos uint64, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(b) == 0 {
		return d.checkPos(pos)
	}
	return d.edit("insert", func() error { return d.pt.Insert(pos, b) })
}

// Append inserts b at the end.
func (d *Document) Append(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(b) == 0 {
		return d.checkPos(0)
	}
	return d.edit("insert", func() error { return d.pt.Append(b) })
}

// InsertMulti inserts b at every position, given in original content
// coordinates. Nothing is inserted unless all positions are valid. On
// success positions hold the start of each inserted copy.
func (d *Document) InsertMulti(positions []uint64, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(b) == 0 || len(positions) == 0 {
		for _, pos := range positions {
			if err := d.checkPos(pos); err != nil {
				return err
			}
		}
		return d.checkPos(0)
	}
	return d.edit("insert", func() error { return d.pt.InsertMulti(positions, b) })
}

// Remove deletes the content in [start, end).
func (d *Document) Remove(start, end uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if start == end {
		return d.checkPos(start)
	}
	return d.edit("delete", func() error { return d.pt.Remove(piecetree.Span(start, end)) })
}

// Replace replaces the content in [start, end) with b.
func (d *Document) Replace(start, end uint64, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if start == end && len(b) == 0 {
		return d.checkPos(start)
	}
	return d.edit("replace", func() error { return d.pt.Replace(piecetree.Span(start, end), b) })
}

// checkPos validates pos for an edit that changes nothing.
func (d *Document) checkPos(pos uint64) error {
	if d.closed {
		return ErrClosed
	}
	if d.opts.readOnly {
		return ErrReadOnly
	}
	if pos > d.pt.Len() {
		return errors.Wrapf(piecetree.ErrOutOfBounds, "position %d, length %d", pos, d.pt.Len())
	}
	return nil
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the most recent change.
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.opts.readOnly {
		return ErrReadOnly
	}
	if err := d.history.Undo(d.pt); err != nil {
		return err
	}
	d.revision++
	return nil
}

// Redo reapplies the most recently undone change.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.opts.readOnly {
		return ErrReadOnly
	}
	if err := d.history.Redo(d.pt); err != nil {
		return err
	}
	d.revision++
	return nil
}

// CanUndo reports whether there is a change to undo.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether there is a change to redo.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// UndoCount returns the number of undoable changes.
func (d *Document) UndoCount() int { return d.history.UndoCount() }

// RedoCount returns the number of redoable changes.
func (d *Document) RedoCount() int { return d.history.RedoCount() }

// BeginGroup starts collecting changes into a single undo step.
func (d *Document) BeginGroup(name string) { d.history.BeginGroup(name) }

// EndGroup closes the current group.
func (d *Document) EndGroup() { d.history.EndGroup() }

// CancelGroup discards the open group without undoing its changes.
func (d *Document) CancelGroup() { d.history.CancelGroup() }

// ClearHistory drops all undo and redo entries.
func (d *Document) ClearHistory() { d.history.Clear() }

// UndoInfo describes the undoable changes, oldest first.
func (d *Document) UndoInfo() []history.Info { return d.history.UndoInfo() }

// ============================================================================
// Checkpoints
// ============================================================================

// Checkpoint stores the current content under name, replacing an earlier
// checkpoint of that name.
func (d *Document) Checkpoint(name string) (CheckpointID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	id := d.checkpoints.Create(name, d.pt.Snapshot(), d.revision)
	if n := d.checkpoints.PruneKeepN(d.opts.maxCheckpoints); n > 0 {
		d.log.Debug("pruned %d checkpoints", n)
	}
	return id, nil
}

// RestoreCheckpoint brings back the content stored under name. The
// restore is itself one undoable change.
func (d *Document) RestoreCheckpoint(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp, err := d.checkpoints.GetByName(name)
	if err != nil {
		return err
	}
	return d.edit("restore "+name, func() error { return d.pt.Restore(cp.Snapshot()) })
}

// DiffSinceCheckpoint compares the content stored under name with the
// current content line by line.
func (d *Document) DiffSinceCheckpoint(name string, opts DiffOptions) (DiffResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return DiffResult{}, ErrClosed
	}
	cp, err := d.checkpoints.GetByName(name)
	if err != nil {
		return DiffResult{}, err
	}
	return tracking.Diff(cp.Snapshot(), d.pt, opts), nil
}

// Checkpoints returns the checkpoint names, oldest first.
func (d *Document) Checkpoints() []string {
	return d.checkpoints.Names()
}

// DeleteCheckpoint removes the checkpoint stored under name.
func (d *Document) DeleteCheckpoint(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checkpoints.DeleteByName(name)
}

// ============================================================================
// Marks
// ============================================================================

// AddMark places a mark at pos. It follows the byte at pos through later
// edits; a mark at the end stays at the end.
func (d *Document) AddMark(pos uint64) (MarkID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	m, err := d.pt.Mark(pos)
	if err != nil {
		return 0, err
	}
	d.nextMark++
	d.marks[d.nextMark] = &m
	return d.nextMark, nil
}

// MarkPos resolves a mark against the current content.
func (d *Document) MarkPos(id MarkID) (MarkPos, error) {
	// Resolving updates the mark's cached position.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return MarkPos{}, ErrClosed
	}
	m, ok := d.marks[id]
	if !ok {
		return MarkPos{}, errors.Wrapf(ErrMarkNotFound, "mark %d", id)
	}
	return d.pt.MarkToPos(m), nil
}

// RemoveMark forgets a mark.
func (d *Document) RemoveMark(id MarkID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.marks[id]; !ok {
		return errors.Wrapf(ErrMarkNotFound, "mark %d", id)
	}
	delete(d.marks, id)
	return nil
}

// MarkCount returns the number of marks.
func (d *Document) MarkCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.marks)
}

// ============================================================================
// Search
// ============================================================================

// Find returns the first match of pattern at or after from. With fold,
// ASCII letters match either case.
func (d *Document) Find(pattern []byte, from uint64, fold bool) (Match, error) {
	s, ok := search.New(pattern, fold)
	if !ok {
		return Match{}, errors.Wrapf(ErrInvalidPattern, "%q", pattern)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return Match{}, ErrClosed
	}
	cur, err := d.pt.BytesAt(from)
	if err != nil {
		return Match{}, err
	}
	m, found := s.Find(cur)
	if err := cur.Err(); err != nil {
		return Match{}, err
	}
	if !found {
		return Match{}, ErrNotFound
	}
	return m, nil
}

// FindPrev returns the last match of pattern ending at or before before.
func (d *Document) FindPrev(pattern []byte, before uint64, fold bool) (Match, error) {
	s, ok := search.NewRev(pattern, fold)
	if !ok {
		return Match{}, errors.Wrapf(ErrInvalidPattern, "%q", pattern)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return Match{}, ErrClosed
	}
	cur, err := d.pt.BytesAt(before)
	if err != nil {
		return Match{}, err
	}
	m, found := s.Find(cur)
	if err := cur.Err(); err != nil {
		return Match{}, err
	}
	if !found {
		return Match{}, ErrNotFound
	}
	return m, nil
}

// FindAll returns every non-overlapping match of pattern in order.
func (d *Document) FindAll(pattern []byte, fold bool) ([]Match, error) {
	s, ok := search.New(pattern, fold)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q", pattern)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}
	cur := d.pt.Bytes()
	matches := s.FindAll(cur)
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// ============================================================================
// Files
// ============================================================================

// Save writes the content to w.
func (d *Document) Save(w io.Writer) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0, ErrClosed
	}
	return d.pt.WriteTo(w)
}

// SaveFile atomically writes the content to path. Saving to the source
// file clears Modified and SourceChanged.
func (d *Document) SaveFile(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := d.pt.SaveTo(path); err != nil {
		return err
	}
	if d.isSource(path) {
		d.savedRevision = d.revision
		if d.watch != nil {
			d.watch.accept()
		}
	}
	d.log.Debug("saved %d bytes to %s", d.pt.Len(), path)
	return nil
}

// SaveSource writes the content back to the file it was opened from.
func (d *Document) SaveSource() error {
	if d.path == "" {
		return ErrNoSource
	}
	return d.SaveFile(d.path)
}

func (d *Document) isSource(path string) bool {
	if d.path == "" {
		return false
	}
	a, err1 := filepath.Abs(path)
	b, err2 := filepath.Abs(d.path)
	return err1 == nil && err2 == nil && a == b
}

// SourceChanged reports whether the source file was modified by someone
// else since it was opened or last saved. It is always false without
// WithWatch.
func (d *Document) SourceChanged() bool {
	return d.watch != nil && d.watch.changed.Load()
}

// SourceEvents returns a channel that receives a value when the source
// file changes. It is nil without WithWatch.
func (d *Document) SourceEvents() <-chan struct{} {
	if d.watch == nil {
		return nil
	}
	return d.watch.notify
}

// Close releases the document's storage, history and checkpoints.
// Snapshots handed out earlier stay readable until released.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs error
	if d.watch != nil {
		errs = errors.CombineErrors(errs, d.watch.close())
	}
	d.history.Clear()
	d.checkpoints.Clear()
	d.marks = nil
	errs = errors.CombineErrors(errs, d.pt.Close())
	d.log.Debug("closed")
	return errs
}
