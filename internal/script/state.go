// Package script runs Lua edit scripts against an engine.Document.
//
// Scripts run in a sandbox with only the base, string, table and math
// libraries. Two modules are provided as globals: doc, which edits and
// queries the document, and json, which converts between JSON text and
// Lua tables. Positions are 0-based byte offsets and ranges are half-open,
// as in the engine.
//
//	local m = doc.find("TODO")
//	while m do
//	  doc.replace(m, m + 4, "DONE")
//	  m = doc.find("TODO", m + 4)
//	end
package script

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/logging"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// State is a sandboxed Lua state bound to one document.
//
// gopher-lua states are not goroutine-safe; State serialises runs.
type State struct {
	L   *lua.LState
	doc *engine.Document

	mu      sync.Mutex
	timeout time.Duration
	out     io.Writer
	log     *logging.Logger
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets the deadline for each run. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput redirects print. By default output is discarded.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger for script runs.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// NewState creates a sandboxed state exposing doc.
func NewState(doc *engine.Document, opts ...Option) *State {
	s := &State{
		doc:     doc,
		timeout: DefaultTimeout,
		out:     io.Discard,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L, s.out)
	registerDocModule(s.L, doc)
	registerJSONModule(s.L)
	return s
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// Run executes code. name appears in error messages.
func (s *State) Run(ctx context.Context, name, code string) error {
	return s.run(ctx, name, strings.NewReader(code))
}

// RunFile executes the script at path.
func (s *State) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open script")
	}
	defer f.Close()
	return s.run(ctx, path, f)
}

func (s *State) run(ctx context.Context, name string, r io.Reader) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("lua panic in %s: %v", name, r)
		}
	}()

	start := time.Now()
	rev := s.doc.Revision()
	fn, err := s.L.Load(r, name)
	if err != nil {
		return errors.Wrapf(err, "load %s", name)
	}
	s.L.Push(fn)
	if err := s.L.PCall(0, 0, nil); err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ErrTimeout, "%s: %v", name, ctx.Err())
		}
		return errors.Wrapf(err, "run %s", name)
	}
	s.log.Debug("ran %s in %s (%d changes)", name, time.Since(start), s.doc.Revision()-rev)
	return nil
}

// Close releases the Lua state. The document is not closed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
