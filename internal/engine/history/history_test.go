package history

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/piecetree"
)

func insert(t *testing.T, h *History, pt *piecetree.PieceTree, pos uint64, s string) {
	t.Helper()
	err := h.Record(pt, "insert", func() error { return pt.InsertString(pos, s) })
	if err != nil {
		t.Fatal(err)
	}
}

func TestUndoRedo(t *testing.T) {
	pt := piecetree.FromBytes([]byte("hello"))
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()

	insert(t, h, pt, 5, " world")
	insert(t, h, pt, 0, ">> ")
	if pt.String() != ">> hello world" {
		t.Fatalf("content = %q", pt.String())
	}

	steps := []struct {
		op   func(Target) error
		want string
	}{
		{h.Undo, "hello world"},
		{h.Undo, "hello"},
		{h.Redo, "hello world"},
		{h.Redo, ">> hello world"},
		{h.Undo, "hello world"},
	}
	for i, s := range steps {
		if err := s.op(pt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if pt.String() != s.want {
			t.Fatalf("step %d: content = %q, want %q", i, pt.String(), s.want)
		}
	}
	if h.UndoCount() != 1 || h.RedoCount() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", h.UndoCount(), h.RedoCount())
	}
}

func TestNothingToUndo(t *testing.T) {
	pt := piecetree.New()
	defer pt.Close()
	h := NewHistory(0)
	if err := h.Undo(pt); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo: %v", err)
	}
	if err := h.Redo(pt); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo: %v", err)
	}
	if h.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %d", h.MaxEntries())
	}
}

func TestRecordFailure(t *testing.T) {
	pt := piecetree.FromBytes([]byte("abc"))
	defer pt.Close()
	h := NewHistory(10)
	err := h.Record(pt, "bad", func() error { return pt.InsertString(10, "x") })
	if !errors.Is(err, piecetree.ErrOutOfBounds) {
		t.Fatalf("err = %v", err)
	}
	if h.CanUndo() {
		t.Error("failed edit was recorded")
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	pt := piecetree.New()
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()

	insert(t, h, pt, 0, "a")
	insert(t, h, pt, 1, "b")
	if err := h.Undo(pt); err != nil {
		t.Fatal(err)
	}
	insert(t, h, pt, 1, "c")
	if h.CanRedo() {
		t.Error("redo survived a new edit")
	}
	if pt.String() != "ac" {
		t.Errorf("content = %q", pt.String())
	}
}

func TestMaxEntries(t *testing.T) {
	pt := piecetree.New()
	defer pt.Close()
	h := NewHistory(3)
	defer h.Clear()

	for i := 0; i < 5; i++ {
		insert(t, h, pt, pt.Len(), "x")
	}
	if h.UndoCount() != 3 {
		t.Fatalf("UndoCount() = %d, want 3", h.UndoCount())
	}
	for h.CanUndo() {
		if err := h.Undo(pt); err != nil {
			t.Fatal(err)
		}
	}
	if pt.String() != "xx" {
		t.Errorf("oldest reachable state = %q, want %q", pt.String(), "xx")
	}

	h.SetMaxEntries(1)
	if h.UndoCount() != 0 || h.MaxEntries() != 1 {
		t.Errorf("after SetMaxEntries: %d entries, max %d", h.UndoCount(), h.MaxEntries())
	}
}

func TestGroup(t *testing.T) {
	pt := piecetree.FromBytes([]byte("a b c"))
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()

	h.BeginGroup("upper")
	if !h.IsGrouping() {
		t.Fatal("not grouping")
	}
	for _, pos := range []uint64{0, 2, 4} {
		err := h.Record(pt, "replace", func() error {
			return pt.Replace(piecetree.Span(pos, pos+1), []byte{"ABC"[pos/2]})
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Undo(pt); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("Undo in group: %v", err)
	}
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}
	info, ok := h.PeekUndo()
	if !ok || info.Name != "upper" || info.BytesDelta != 0 {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if err := h.Undo(pt); err != nil {
		t.Fatal(err)
	}
	if pt.String() != "a b c" {
		t.Errorf("after undo = %q", pt.String())
	}
	if err := h.Redo(pt); err != nil {
		t.Fatal(err)
	}
	if pt.String() != "A B C" {
		t.Errorf("after redo = %q", pt.String())
	}
}

func TestEmptyGroupRecordsNothing(t *testing.T) {
	h := NewHistory(10)
	scope := h.GroupScope("nothing")
	scope.End()
	scope.End()
	if h.IsGrouping() || h.CanUndo() {
		t.Error("empty group recorded")
	}
}

func TestTransaction(t *testing.T) {
	pt := piecetree.FromBytes([]byte("keep"))
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()

	err := h.Transaction(pt, "fail", func() error {
		if err := h.Record(pt, "a", func() error { return pt.InsertString(0, "x") }); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v", err)
	}
	if pt.String() != "keep" || h.CanUndo() {
		t.Errorf("failed transaction left %q, undo %v", pt.String(), h.CanUndo())
	}

	err = h.Transaction(pt, "ok", func() error {
		return h.Record(pt, "a", func() error { return pt.Append([]byte("!")) })
	})
	if err != nil {
		t.Fatal(err)
	}
	if pt.String() != "keep!" || h.UndoCount() != 1 {
		t.Errorf("content %q, %d steps", pt.String(), h.UndoCount())
	}
}

func TestCheckpoint(t *testing.T) {
	pt := piecetree.New()
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()

	insert(t, h, pt, 0, "one ")
	cp := h.CreateCheckpoint()
	insert(t, h, pt, 4, "two ")
	insert(t, h, pt, 8, "three")

	if err := h.UndoToCheckpoint(pt, cp); err != nil {
		t.Fatal(err)
	}
	if pt.String() != "one " {
		t.Errorf("after UndoToCheckpoint = %q", pt.String())
	}
	if err := h.RedoToCheckpoint(pt, Checkpoint{undoDepth: 3}); err != nil {
		t.Fatal(err)
	}
	if pt.String() != "one two three" {
		t.Errorf("after RedoToCheckpoint = %q", pt.String())
	}
}

func TestInfo(t *testing.T) {
	pt := piecetree.New()
	defer pt.Close()
	h := NewHistory(10)
	defer h.Clear()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	insert(t, h, pt, 0, "abc")
	if err := h.Record(pt, "delete", func() error { return pt.Remove(piecetree.Span(0, 1)) }); err != nil {
		t.Fatal(err)
	}
	infos := h.UndoInfo()
	if len(infos) != 2 {
		t.Fatalf("UndoInfo() has %d entries", len(infos))
	}
	if infos[0].Name != "insert" || infos[0].BytesDelta != 3 || !infos[0].Timestamp.Equal(fixed) {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Name != "delete" || infos[1].BytesDelta != -1 {
		t.Errorf("infos[1] = %+v", infos[1])
	}
	if err := h.Undo(pt); err != nil {
		t.Fatal(err)
	}
	if r := h.RedoInfo(); len(r) != 1 || r[0].Name != "delete" {
		t.Errorf("RedoInfo() = %+v", r)
	}
	if _, ok := h.PeekRedo(); !ok {
		t.Error("PeekRedo() empty")
	}
}

func TestClearReleasesSnapshots(t *testing.T) {
	pt := piecetree.New()
	h := NewHistory(10)
	insert(t, h, pt, 0, "abc")
	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear left entries")
	}
	if err := pt.Close(); err != nil {
		t.Fatal(err)
	}
}
