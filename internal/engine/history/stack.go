package history

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/piecetree"
)

// DefaultMaxEntries is used when NewHistory is given a non-positive limit.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrGroupOpen     = errors.New("history group still open")
)

// Target is the document whose states are recorded.
type Target interface {
	Snapshot() *piecetree.Snapshot
	Restore(*piecetree.Snapshot) error
}

type entry struct {
	name      string
	before    *piecetree.Snapshot
	after     *piecetree.Snapshot
	timestamp time.Time
}

func (e *entry) release() {
	e.before.Release()
	e.after.Release()
}

func (e *entry) info() Info {
	return Info{
		Name:       e.name,
		Timestamp:  e.timestamp,
		BytesDelta: int64(e.after.Len()) - int64(e.before.Len()),
	}
}

// Info describes a history entry.
type Info struct {
	Name       string
	Timestamp  time.Time
	BytesDelta int64
}

// History manages undo/redo state for a document.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	grouping    bool
	groupName   string
	groupBefore *piecetree.Snapshot
	groupAfter  *piecetree.Snapshot

	maxEntries int
	now        func() time.Time
}

// NewHistory creates a history keeping at most maxEntries undo steps.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries, now: time.Now}
}

// Record runs edit and, if it succeeds, records the change it made to t
// as one undo step. A failed edit leaves the history untouched.
func (h *History) Record(t Target, name string, edit func() error) error {
	before := t.Snapshot()
	if err := edit(); err != nil {
		before.Release()
		return err
	}
	after := t.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.groupBefore == nil {
			h.groupBefore = before
		} else {
			before.Release()
		}
		if h.groupAfter != nil {
			h.groupAfter.Release()
		}
		h.groupAfter = after
		return nil
	}
	h.pushLocked(&entry{name: name, before: before, after: after, timestamp: h.now()})
	return nil
}

func (h *History) pushLocked(e *entry) {
	h.undoStack = append(h.undoStack, e)

	releaseAll(h.redoStack)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		releaseAll(h.undoStack[:excess])
		h.undoStack = append([]*entry(nil), h.undoStack[excess:]...)
	}
}

func releaseAll(entries []*entry) {
	for _, e := range entries {
		e.release()
	}
}

// Undo restores t to the state before the last recorded step.
func (h *History) Undo(t Target) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return ErrGroupOpen
	}
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	if err := t.Restore(e.before); err != nil {
		return errors.Wrapf(err, "undo %s", e.name)
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return nil
}

// Redo reapplies the last undone step.
func (h *History) Redo(t Target) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return ErrGroupOpen
	}
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	if err := t.Restore(e.after); err != nil {
		return errors.Wrapf(err, "redo %s", e.name)
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group. Steps recorded until EndGroup are combined
// into one. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
}

// EndGroup closes the group and records it if anything changed.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if h.groupBefore == nil {
		return
	}
	h.pushLocked(&entry{
		name:      h.groupName,
		before:    h.groupBefore,
		after:     h.groupAfter,
		timestamp: h.now(),
	})
	h.groupBefore, h.groupAfter = nil, nil
}

// CancelGroup ends the group without recording it. Edits already made
// stay in the document.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelGroupLocked()
}

func (h *History) cancelGroupLocked() {
	h.grouping = false
	if h.groupBefore != nil {
		h.groupBefore.Release()
		h.groupAfter.Release()
	}
	h.groupBefore, h.groupAfter = nil, nil
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all history and releases its snapshots.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	releaseAll(h.undoStack)
	releaseAll(h.redoStack)
	h.undoStack, h.redoStack = nil, nil
	h.cancelGroupLocked()
}

// UndoInfo describes the undo steps, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo steps, oldest undone last.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(entries []*entry) []Info {
	out := make([]Info, len(entries))
	for i, e := range entries {
		out[i] = e.info()
	}
	return out
}

// PeekUndo describes the step Undo would revert.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the step Redo would reapply.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the undo limit, dropping the oldest steps if
// needed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		releaseAll(h.undoStack[:excess])
		h.undoStack = append([]*entry(nil), h.undoStack[excess:]...)
	}
}

// MaxEntries returns the undo limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
