package history

// GroupScope closes a group on End, for use with defer:
//
//	defer h.GroupScope("reformat").End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a group and returns its scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End ends the group. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel ends the group without recording it.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group. If fn fails, t is restored to its
// state before the transaction and nothing is recorded.
func (h *History) Transaction(t Target, name string, fn func() error) error {
	start := t.Snapshot()
	defer start.Release()

	h.BeginGroup(name)
	if err := fn(); err != nil {
		h.CancelGroup()
		if rerr := t.Restore(start); rerr != nil {
			return rerr
		}
		return err
	}
	h.EndGroup()
	return nil
}

// Checkpoint is a position in the undo stack.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint returns the current position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes every step recorded since cp.
func (h *History) UndoToCheckpoint(t Target, cp Checkpoint) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(t); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes steps until the undo depth reaches cp or no
// redo is left.
func (h *History) RedoToCheckpoint(t Target, cp Checkpoint) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(t); err != nil {
			return err
		}
	}
	return nil
}
