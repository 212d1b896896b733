package main

import (
	"flag"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/rivo/uniseg"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/engine/piecetree"
	"github.com/dshills/piecetree/internal/engine/text"
)

const tabWidth = 8

// stats describes one document.
type stats struct {
	Bytes     uint64
	Pieces    int
	Lines     int
	Chars     int
	Graphemes int
	Invalid   int
	MaxWidth  int
	Mode      string
}

// collectStats scans snap. Lines are counted the way Lines iterates them,
// so content ending in a newline has a final empty line.
func collectStats(snap *piecetree.Snapshot) (stats, error) {
	st := stats{Bytes: snap.Len(), Pieces: snap.PieceCount()}

	chars := snap.Chars()
	for {
		c, ok := chars.Next()
		if !ok {
			break
		}
		st.Chars++
		if c.Rune == utf8.RuneError && !isEncodedRuneError(snap, c) {
			st.Invalid++
		}
	}

	// Clusters are read from a byte cursor kept in step with the
	// segmenter.
	var (
		gr      = snap.Graphemes()
		raw     = snap.Bytes()
		cluster []byte
		col     int
	)
	for {
		c, ok := gr.Next()
		if !ok {
			break
		}
		st.Graphemes++
		cluster = cluster[:0]
		for i := uint64(0); i < c.Len(); i++ {
			b, _ := raw.Next()
			cluster = append(cluster, b)
		}
		switch {
		case cluster[len(cluster)-1] == '\n':
			col = 0
		case len(cluster) == 1 && cluster[0] == '\t':
			col += tabWidth - col%tabWidth
		default:
			col += text.ClusterWidth(cluster)
		}
		st.MaxWidth = max(st.MaxWidth, col)
	}
	if err := raw.Err(); err != nil {
		return st, err
	}

	lines := snap.Lines()
	for {
		if _, ok := lines.Next(); !ok {
			break
		}
		st.Lines++
	}
	return st, nil
}

// isEncodedRuneError tells a literal U+FFFD, the only valid three byte
// sequence starting 0xEF that decodes to RuneError, from invalid input.
func isEncodedRuneError(snap *piecetree.Snapshot, c text.Char) bool {
	if c.Len() != 3 {
		return false
	}
	b, err := snap.BytesAt(c.Start)
	if err != nil {
		return false
	}
	first, _ := b.Next()
	return first == 0xEF
}

// verifyStats recounts characters and graphemes over the whole text with
// the standard library and uniseg.
func verifyStats(snap *piecetree.Snapshot, st stats) error {
	if st.Invalid > 0 {
		return errors.Newf("verify: %d invalid UTF-8 sequences", st.Invalid)
	}
	s := snap.String()
	if n := utf8.RuneCountInString(s); n != st.Chars {
		return errors.Newf("verify: %d characters, utf8 counts %d", st.Chars, n)
	}
	if n := uniseg.GraphemeClusterCount(s); n != st.Graphemes {
		return errors.Newf("verify: %d graphemes, uniseg counts %d", st.Graphemes, n)
	}
	return nil
}

func statJSON(path string, st stats, verified bool) ([]byte, error) {
	out := []byte("{}")
	fields := []struct {
		key   string
		value any
	}{
		{"file", path},
		{"bytes", st.Bytes},
		{"pieces", st.Pieces},
		{"lines", st.Lines},
		{"chars", st.Chars},
		{"graphemes", st.Graphemes},
		{"invalid_utf8", st.Invalid},
		{"max_width", st.MaxWidth},
		{"mode", st.Mode},
	}
	var err error
	for _, f := range fields {
		if out, err = sjson.SetBytes(out, f.key, f.value); err != nil {
			return nil, err
		}
	}
	if verified {
		if out, err = sjson.SetBytes(out, "verified", true); err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(out), nil
}

func runStat(e *env, args []string) error {
	var asJSON, verify bool
	var color string
	fs, err := subcommand(e, "stat", "[-json] [-verify] FILE", 1, args, func(fs *flag.FlagSet) {
		fs.BoolVar(&asJSON, "json", false, "Write JSON")
		fs.BoolVar(&verify, "verify", false, "Cross-check counts against uniseg (reads the whole file)")
		fs.StringVar(&color, "color", "auto", "Colorize JSON (auto, always, never)")
	})
	if err != nil {
		return err
	}
	path := fs.Arg(0)

	d, err := openDocument(e, path, engine.WithReadOnly())
	if err != nil {
		return err
	}
	defer d.Close()
	snap, err := d.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	st, err := collectStats(snap)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	st.Mode = d.Mode().String()
	if verify {
		if err := verifyStats(snap, st); err != nil {
			return err
		}
	}

	if asJSON {
		colored, err := useColor(color, e.stdout)
		if err != nil {
			return err
		}
		out, err := statJSON(path, st, verify)
		if err != nil {
			return err
		}
		if colored {
			out = pretty.Color(out, nil)
		}
		_, err = e.stdout.Write(out)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "file:       %s\n", path)
	fmt.Fprintf(&b, "bytes:      %d\n", st.Bytes)
	fmt.Fprintf(&b, "pieces:     %d\n", st.Pieces)
	fmt.Fprintf(&b, "lines:      %d\n", st.Lines)
	fmt.Fprintf(&b, "chars:      %d\n", st.Chars)
	fmt.Fprintf(&b, "graphemes:  %d\n", st.Graphemes)
	fmt.Fprintf(&b, "invalid:    %d\n", st.Invalid)
	fmt.Fprintf(&b, "max width:  %d\n", st.MaxWidth)
	fmt.Fprintf(&b, "mode:       %s\n", st.Mode)
	if verify {
		b.WriteString("verified:   ok\n")
	}
	_, err = fmt.Fprint(e.stdout, b.String())
	return err
}
