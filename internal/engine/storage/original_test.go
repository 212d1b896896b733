package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orig.txt")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMemorySlice(t *testing.T) {
	o := FromBytes([]byte("0123456789"))
	if o.Len() != 10 {
		t.Fatalf("Len = %d", o.Len())
	}
	b, err := o.Slice(3, 4)
	if err != nil || string(b) != "3456" {
		t.Fatalf("Slice(3,4) = %q, %v", b, err)
	}
	if cap(b) != 4 {
		t.Errorf("slice capacity %d leaks trailing bytes", cap(b))
	}
	if _, err := o.Slice(8, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Slice(8,3) err = %v", err)
	}
}

func TestReadAll(t *testing.T) {
	o, err := ReadAll(strings.NewReader("from a reader"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := o.Slice(0, o.Len())
	if string(b) != "from a reader" {
		t.Errorf("content = %q", b)
	}
}

func TestPagedSlice(t *testing.T) {
	data := pattern(0, 1000)
	p := newPaged(bytes.NewReader(data), nil, uint64(len(data)), 64, 3)

	tests := []struct {
		off, n uint64
	}{
		{0, 10},
		{60, 10},  // crosses one page boundary
		{100, 300}, // spans several pages
		{990, 10},  // short last page
		{0, 1000},
		{500, 0},
	}
	for _, tt := range tests {
		got, err := p.Slice(tt.off, tt.n)
		if err != nil {
			t.Fatalf("Slice(%d,%d): %v", tt.off, tt.n, err)
		}
		if !bytes.Equal(got, data[tt.off:tt.off+tt.n]) {
			t.Errorf("Slice(%d,%d) mismatch", tt.off, tt.n)
		}
	}
	if c := p.cached(); c > 3 {
		t.Errorf("cache holds %d pages, limit 3", c)
	}
	if _, err := p.Slice(999, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Slice past end err = %v", err)
	}
}

func TestPagedShortRead(t *testing.T) {
	data := pattern(0, 100)
	// Claims more bytes than the reader has.
	p := newPaged(bytes.NewReader(data), nil, 200, 64, 2)
	if _, err := p.Slice(150, 10); err == nil {
		t.Fatal("expected an error reading beyond the real content")
	}
}

func TestOpenFileModes(t *testing.T) {
	data := pattern(0, 4096)
	path := writeTemp(t, data)

	tests := []struct {
		name string
		opts OpenOptions
		want Mode
	}{
		{"auto small", OpenOptions{Mode: ModeAuto, MmapThreshold: 1 << 20}, ModeMemory},
		{"memory", OpenOptions{Mode: ModeMemory}, ModeMemory},
		{"paged", OpenOptions{Mode: ModePaged, PageSize: 512, PageCacheSize: 2}, ModePaged},
	}
	if MmapSupported() {
		tests = append(tests,
			struct {
				name string
				opts OpenOptions
				want Mode
			}{"auto large", OpenOptions{Mode: ModeAuto, MmapThreshold: 1024}, ModeMmap},
			struct {
				name string
				opts OpenOptions
				want Mode
			}{"mmap", OpenOptions{Mode: ModeMmap}, ModeMmap},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, mode, err := OpenFile(path, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			defer o.Close()
			if mode != tt.want {
				t.Errorf("mode = %v, want %v", mode, tt.want)
			}
			if o.Len() != uint64(len(data)) {
				t.Fatalf("Len = %d", o.Len())
			}
			got, err := o.Slice(1000, 2000)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, data[1000:3000]) {
				t.Error("content mismatch")
			}
		})
	}
}

func TestOpenFileMissing(t *testing.T) {
	_, _, err := OpenFile(filepath.Join(t.TempDir(), "nope"), DefaultOpenOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"auto", "memory", "mmap", "paged"} {
		m, err := ParseMode(s)
		if err != nil || m.String() != s {
			t.Errorf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("tape"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(tape) err = %v", err)
	}
}

type countingCloser struct {
	Original
	closed int
}

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestSharedRelease(t *testing.T) {
	cc := &countingCloser{Original: FromBytes([]byte("x"))}
	s := Share(cc)
	s.Acquire()
	s.Acquire()

	for i := 0; i < 2; i++ {
		if err := s.Release(); err != nil {
			t.Fatal(err)
		}
		if cc.closed != 0 {
			t.Fatalf("closed after %d of 3 releases", i+1)
		}
	}
	if b, err := s.Slice(0, 1); err != nil || string(b) != "x" {
		t.Errorf("Slice on live handle = %q, %v", b, err)
	}
	if err := s.Release(); err != nil {
		t.Fatal(err)
	}
	if cc.closed != 1 {
		t.Errorf("closed %d times, want 1", cc.closed)
	}
	if _, err := s.Slice(0, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Slice after release err = %v", err)
	}
	if err := s.Release(); !errors.Is(err, ErrClosed) {
		t.Errorf("extra Release err = %v", err)
	}
}
