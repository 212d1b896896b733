package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/dshills/piecetree/internal/engine"
)

func newState(t *testing.T, content string, opts ...Option) (*State, *engine.Document) {
	t.Helper()
	d := engine.NewFromBytes([]byte(content))
	s := NewState(d, opts...)
	t.Cleanup(func() {
		s.Close()
		d.Close()
	})
	return s, d
}

func run(t *testing.T, s *State, code string) {
	t.Helper()
	if err := s.Run(context.Background(), "test", code); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestEditScript(t *testing.T) {
	s, d := newState(t, "TODO: one\nTODO: two\n")
	run(t, s, `
local s, e = doc.find("TODO")
while s do
  doc.replace(s, e, "DONE")
  s, e = doc.find("TODO", e)
end
doc.insert(0, "# list\n")
doc.append("end\n")
`)
	if want := "# list\nDONE: one\nDONE: two\nend\n"; d.Text() != want {
		t.Errorf("text = %q, want %q", d.Text(), want)
	}
}

func TestDocModule(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
		want    string
	}{
		{"len", "abc", `doc.append(tostring(doc.len()))`, "abc3"},
		{"sub", "hello world", `doc.insert(0, doc.sub(6, 11) .. " ")`, "world hello world"},
		{"sub to end", "hello world", `doc.append(doc.sub(5))`, "hello world world"},
		{"remove", "hello world", `doc.remove(5, 11)`, "hello"},
		{"find missing", "abc", `if doc.find("x") == nil then doc.append("!") end`, "abc!"},
		{"find fold", "Hello", `local s = doc.find("hello", 0, true) doc.append(tostring(s))`, "Hello0"},
		{"find prev", "a-a-a", `local s = doc.find_prev("a", 4) doc.append(tostring(s))`, "a-a-a2"},
		{"find all", "a-a-a", `
local all = doc.find_all("a")
for i = #all, 1, -1 do doc.replace(all[i].start, all[i].stop, "b") end`, "b-b-b"},
		{"undo", "x", `doc.append("y") doc.append("z") doc.undo() doc.redo() doc.undo()`, "xy"},
		{"undo empty", "x", `if not doc.undo() then doc.append("!") end`, "x!"},
		{"group", "x", `
doc.begin_group("g")
doc.append("1") doc.append("2")
doc.end_group()
doc.undo()`, "x"},
		{"marks", "abcdef", `
local m = doc.mark(3)
doc.insert(0, ">>")
local pos, deleted = doc.mark_pos(m)
doc.append(tostring(pos) .. tostring(deleted))`, ">>abcdef5false"},
		{"checkpoint", "base", `
doc.checkpoint("start")
doc.replace(0, 4, "changed")
doc.restore("start")
doc.append(" again")`, "base again"},
		{"revision", "", `doc.append("a") doc.append(tostring(doc.revision()))`, "a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newState(t, tt.content)
			run(t, s, tt.code)
			if got := d.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"out of bounds", `doc.insert(100, "x")`, "insert"},
		{"negative", `doc.insert(-1, "x")`, "non-negative"},
		{"syntax", `doc.insert(`, "load test"},
		{"runtime", `error("boom")`, "boom"},
		{"bad mark", `doc.mark_pos(42)`, "mark not found"},
		{"bad checkpoint", `doc.restore("nope")`, "restore"},
		{"empty pattern", `doc.find("")`, "invalid search pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newState(t, "abc")
			err := s.Run(context.Background(), "test", tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Run = %v, want error containing %q", err, tt.want)
			}
			if d.Text() != "abc" {
				t.Errorf("failed script changed text to %q", d.Text())
			}
		})
	}
}

func TestSandbox(t *testing.T) {
	s, d := newState(t, "")
	run(t, s, `
for _, name in ipairs({"io", "os", "debug", "require", "load", "loadstring", "dofile", "loadfile"}) do
  if _G[name] ~= nil then doc.append(name .. " ") end
end
doc.append(string.upper("ok") .. math.floor(2.5) .. table.concat({"a", "b"}))
`)
	if d.Text() != "OK2ab" {
		t.Errorf("sandbox leaked: %q", d.Text())
	}
}

func TestTimeout(t *testing.T) {
	s, _ := newState(t, "", WithTimeout(50*time.Millisecond))
	start := time.Now()
	err := s.Run(context.Background(), "loop", `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not enforced promptly")
	}
	// The state stays usable.
	run(t, s, `doc.append("after")`)
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	s, _ := newState(t, "xyz", WithOutput(&out))
	run(t, s, `print("len", doc.len(), true)`)
	if out.String() != "len\t3\ttrue\n" {
		t.Errorf("print output %q", out.String())
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.lua")
	if err := os.WriteFile(path, []byte(`doc.append(" from file")`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, d := newState(t, "text")
	if err := s.RunFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "text from file" {
		t.Errorf("text = %q", d.Text())
	}
	if err := s.RunFile(context.Background(), path+".missing"); err == nil {
		t.Error("missing script ran")
	}
}

func TestClosed(t *testing.T) {
	s, _ := newState(t, "")
	_ = s.Close()
	if err := s.Run(context.Background(), "x", ""); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Run after Close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestJSONModule(t *testing.T) {
	s, d := newState(t, "")
	run(t, s, `
local v = json.decode('{"name": "doc", "tags": ["a", "b"], "n": 3, "ok": true, "none": null}')
doc.append(v.name .. #v.tags .. v.tags[2] .. v.n .. tostring(v.ok) .. tostring(v.none))
doc.append(" " .. json.get('{"a": {"b": [10, 20]}}', "a.b.1"))
if json.get('{}', "missing") == nil then doc.append(" nil") end
`)
	if d.Text() != "doc2b3truenil 20 nil" {
		t.Errorf("text = %q", d.Text())
	}
}

func TestJSONEncode(t *testing.T) {
	s, d := newState(t, "")
	run(t, s, `
doc.append(json.encode({
  name = "x.y",
  list = {1, 2.5, "three", false},
  nested = {inner = {deep = true}},
  ["7"] = "numeric key",
}, true))
`)
	out := d.Text()
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}
	checks := map[string]string{
		`name`:              "x.y",
		`list.#`:            "4",
		`list.1`:            "2.5",
		`list.2`:            "three",
		`list.3`:            "false",
		`nested.inner.deep`: "true",
		`7`:                 "numeric key",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("not indented: %s", out)
	}

	err := s.Run(context.Background(), "fn", `json.encode({f = print})`)
	if err == nil || !strings.Contains(err.Error(), "cannot encode") {
		t.Errorf("encoding a function: %v", err)
	}
}
