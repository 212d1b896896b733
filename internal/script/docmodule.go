package script

import (
	"github.com/cockroachdb/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/engine/history"
)

// docModule implements the doc global.
type docModule struct {
	doc *engine.Document
}

func registerDocModule(L *lua.LState, doc *engine.Document) {
	m := &docModule{doc: doc}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"len":         m.len,
		"text":        m.text,
		"sub":         m.sub,
		"insert":      m.insert,
		"append":      m.append,
		"remove":      m.remove,
		"replace":     m.replace,
		"find":        m.find,
		"find_prev":   m.findPrev,
		"find_all":    m.findAll,
		"undo":        m.undo,
		"redo":        m.redo,
		"begin_group": m.beginGroup,
		"end_group":   m.endGroup,
		"mark":        m.mark,
		"mark_pos":    m.markPos,
		"checkpoint":  m.checkpoint,
		"restore":     m.restore,
		"revision":    m.revision,
		"path":        m.path,
	})
	L.SetGlobal("doc", mod)
}

// checkPos reads a non-negative position argument.
func checkPos(L *lua.LState, n int) uint64 {
	v := L.CheckInt64(n)
	if v < 0 {
		L.ArgError(n, "position must be non-negative")
	}
	return uint64(v)
}

func optPos(L *lua.LState, n int, def uint64) uint64 {
	if L.Get(n) == lua.LNil {
		return def
	}
	return checkPos(L, n)
}

// len() -> number
func (m *docModule) len(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.Len()))
	return 1
}

// text() -> string
func (m *docModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.doc.Text()))
	return 1
}

// sub(start, end) -> string
func (m *docModule) sub(L *lua.LState) int {
	start := checkPos(L, 1)
	end := optPos(L, 2, m.doc.Len())
	s, err := m.doc.TextRange(start, end)
	if err != nil {
		L.RaiseError("sub: %v", err)
	}
	L.Push(lua.LString(s))
	return 1
}

// insert(pos, text)
func (m *docModule) insert(L *lua.LState) int {
	pos := checkPos(L, 1)
	text := L.CheckString(2)
	if err := m.doc.Insert(pos, []byte(text)); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// append(text)
func (m *docModule) append(L *lua.LState) int {
	if err := m.doc.Append([]byte(L.CheckString(1))); err != nil {
		L.RaiseError("append: %v", err)
	}
	return 0
}

// remove(start, end)
func (m *docModule) remove(L *lua.LState) int {
	start, end := checkPos(L, 1), checkPos(L, 2)
	if err := m.doc.Remove(start, end); err != nil {
		L.RaiseError("remove: %v", err)
	}
	return 0
}

// replace(start, end, text)
func (m *docModule) replace(L *lua.LState) int {
	start, end := checkPos(L, 1), checkPos(L, 2)
	text := L.CheckString(3)
	if err := m.doc.Replace(start, end, []byte(text)); err != nil {
		L.RaiseError("replace: %v", err)
	}
	return 0
}

// pushMatch pushes start and end, or nil when nothing matched.
func pushMatch(L *lua.LState, fn string, match engine.Match, err error) int {
	if errors.Is(err, engine.ErrNotFound) {
		L.Push(lua.LNil)
		return 1
	}
	if err != nil {
		L.RaiseError("%s: %v", fn, err)
	}
	L.Push(lua.LNumber(match.Start))
	L.Push(lua.LNumber(match.End))
	return 2
}

// find(pattern, [from], [fold]) -> start, end | nil
func (m *docModule) find(L *lua.LState) int {
	pattern := L.CheckString(1)
	from := optPos(L, 2, 0)
	fold := L.OptBool(3, false)
	match, err := m.doc.Find([]byte(pattern), from, fold)
	return pushMatch(L, "find", match, err)
}

// find_prev(pattern, [before], [fold]) -> start, end | nil
func (m *docModule) findPrev(L *lua.LState) int {
	pattern := L.CheckString(1)
	before := optPos(L, 2, m.doc.Len())
	fold := L.OptBool(3, false)
	match, err := m.doc.FindPrev([]byte(pattern), before, fold)
	return pushMatch(L, "find_prev", match, err)
}

// find_all(pattern, [fold]) -> {{start=, stop=}, ...}
func (m *docModule) findAll(L *lua.LState) int {
	pattern := L.CheckString(1)
	fold := L.OptBool(2, false)
	matches, err := m.doc.FindAll([]byte(pattern), fold)
	if err != nil {
		L.RaiseError("find_all: %v", err)
	}
	t := L.CreateTable(len(matches), 0)
	for _, match := range matches {
		mt := L.CreateTable(0, 2)
		mt.RawSetString("start", lua.LNumber(match.Start))
		mt.RawSetString("stop", lua.LNumber(match.End))
		t.Append(mt)
	}
	L.Push(t)
	return 1
}

// historyStep pushes false when there is nothing to step over.
func historyStep(L *lua.LState, fn string, step func() error, empty error) int {
	err := step()
	if errors.Is(err, empty) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		L.RaiseError("%s: %v", fn, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// undo() -> bool
func (m *docModule) undo(L *lua.LState) int {
	return historyStep(L, "undo", m.doc.Undo, history.ErrNothingToUndo)
}

// redo() -> bool
func (m *docModule) redo(L *lua.LState) int {
	return historyStep(L, "redo", m.doc.Redo, history.ErrNothingToRedo)
}

// begin_group([name])
func (m *docModule) beginGroup(L *lua.LState) int {
	m.doc.BeginGroup(L.OptString(1, "script"))
	return 0
}

// end_group()
func (m *docModule) endGroup(L *lua.LState) int {
	m.doc.EndGroup()
	return 0
}

// mark(pos) -> id
func (m *docModule) mark(L *lua.LState) int {
	id, err := m.doc.AddMark(checkPos(L, 1))
	if err != nil {
		L.RaiseError("mark: %v", err)
	}
	L.Push(lua.LNumber(id))
	return 1
}

// mark_pos(id) -> pos, deleted
func (m *docModule) markPos(L *lua.LState) int {
	id := L.CheckInt64(1)
	p, err := m.doc.MarkPos(engine.MarkID(id))
	if err != nil {
		L.RaiseError("mark_pos: %v", err)
	}
	L.Push(lua.LNumber(p.Pos))
	L.Push(lua.LBool(p.Deleted))
	return 2
}

// checkpoint(name)
func (m *docModule) checkpoint(L *lua.LState) int {
	if _, err := m.doc.Checkpoint(L.CheckString(1)); err != nil {
		L.RaiseError("checkpoint: %v", err)
	}
	return 0
}

// restore(name)
func (m *docModule) restore(L *lua.LState) int {
	if err := m.doc.RestoreCheckpoint(L.CheckString(1)); err != nil {
		L.RaiseError("restore: %v", err)
	}
	return 0
}

// revision() -> number
func (m *docModule) revision(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.Revision()))
	return 1
}

// path() -> string
func (m *docModule) path(L *lua.LState) int {
	L.Push(lua.LString(m.doc.Path()))
	return 1
}
