package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedClock(l *Logger) {
	l.sink.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})
	fixedClock(l)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered records: %q", out)
	}
	want := "2024-03-01T12:00:00.000 [WARN] test: shown 1\n" +
		"2024-03-01T12:00:00.000 [ERROR] test: shown 2\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestLoggerFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})
	fixedClock(l)

	l.WithComponent("storage").WithFields(map[string]any{"size": 10, "mode": "mmap"}).Debug("opened")

	want := "2024-03-01T12:00:00.000 [DEBUG] opened {component=storage, mode=mmap, size=10}\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelError, Output: &buf})
	child := parent.WithComponent("tree")

	child.Info("before")
	parent.SetLevel(LevelInfo)
	child.Info("after")

	if strings.Contains(buf.String(), "before") {
		t.Error("child logged below the shared level")
	}
	if !strings.Contains(buf.String(), "after") {
		t.Error("child did not observe the parent's level change")
	}
	if !child.Enabled(LevelInfo) || child.Enabled(LevelDebug) {
		t.Error("Enabled does not match the shared level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(LevelError) {
		t.Error("Discard logger reports enabled")
	}
	l.Error("nothing %s", "here")

	var nilLogger *Logger
	nilLogger.Info("no panic")
}
