package main

import (
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/engine/piecetree"
)

// errNoMatch makes search exit with status 1 without printing an error.
var errNoMatch = errors.New("no match")

const (
	highlightOn  = "\x1b[1;31m"
	highlightOff = "\x1b[0m"
)

// matchLine is a line holding at least one match.
type matchLine struct {
	start, end uint64
	matches    []engine.Match
}

func runSearch(e *env, args []string) error {
	var fold, reverse, count bool
	var color string
	fs, err := subcommand(e, "search", "[-i] [-r] [-count] PATTERN FILE", 2, args, func(fs *flag.FlagSet) {
		fs.BoolVar(&fold, "i", e.cfg.Search.CaseInsensitive, "Ignore ASCII case")
		fs.BoolVar(&reverse, "r", false, "Report matches from the end of the file")
		fs.BoolVar(&count, "count", false, "Print only the number of matches")
		fs.StringVar(&color, "color", "auto", "Highlight matches (auto, always, never)")
	})
	if err != nil {
		return err
	}
	pattern, path := []byte(fs.Arg(0)), fs.Arg(1)

	d, err := openDocument(e, path, engine.WithReadOnly())
	if err != nil {
		return err
	}
	defer d.Close()

	var matches []engine.Match
	if reverse {
		matches, err = findBackward(d, pattern, fold)
	} else {
		matches, err = d.FindAll(pattern, fold)
	}
	if err != nil {
		return err
	}
	e.log.Debug("search %q in %s: %d matches", pattern, path, len(matches))
	if len(matches) == 0 {
		if count {
			fmt.Fprintln(e.stdout, 0)
		}
		return errNoMatch
	}
	if count {
		_, err := fmt.Fprintln(e.stdout, len(matches))
		return err
	}

	colored, err := useColor(color, e.stdout)
	if err != nil {
		return err
	}
	snap, err := d.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	lines, numbers, err := groupByLine(snap, matches)
	if err != nil {
		return err
	}
	for _, l := range lines {
		text, err := snap.Text(piecetree.Span(l.start, l.end))
		if err != nil {
			return err
		}
		out := formatLine(string(text), l, colored)
		if _, err := fmt.Fprintf(e.stdout, "%s:%d:%s\n", path, numbers[l.start], out); err != nil {
			return err
		}
	}
	return nil
}

// findBackward collects matches from the end of d towards the start.
func findBackward(d *engine.Document, pattern []byte, fold bool) ([]engine.Match, error) {
	var matches []engine.Match
	before := d.Len()
	for {
		m, err := d.FindPrev(pattern, before, fold)
		if errors.Is(err, engine.ErrNotFound) {
			return matches, nil
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
		before = m.Start
	}
}

// groupByLine assigns matches to the lines they start on, keeping the
// order the matches were found in. Line numbers are keyed by line start.
func groupByLine(snap *piecetree.Snapshot, matches []engine.Match) ([]*matchLine, map[uint64]int, error) {
	var (
		lines  []*matchLine
		byLine = make(map[uint64]*matchLine)
	)
	for _, m := range matches {
		it, err := snap.LinesAt(m.Start)
		if err != nil {
			return nil, nil, err
		}
		s, ok := it.Next()
		if !ok {
			return nil, nil, errors.Newf("no line at %d", m.Start)
		}
		l := byLine[s.Start()]
		if l == nil {
			end := s.End()
			if end > s.Start() {
				if last, err := snap.Text(piecetree.Span(end-1, end)); err == nil && last[0] == '\n' {
					end--
				}
			}
			l = &matchLine{start: s.Start(), end: end}
			byLine[l.start] = l
			lines = append(lines, l)
		}
		l.matches = append(l.matches, m)
	}

	numbers := make(map[uint64]int, len(lines))
	it := snap.Lines()
	for n := 1; len(numbers) < len(lines); n++ {
		s, ok := it.Next()
		if !ok {
			break
		}
		if _, ok := byLine[s.Start()]; ok {
			numbers[s.Start()] = n
		}
	}
	return lines, numbers, nil
}

// formatLine renders "col:text" for l, where col is the display column of
// the first match on the line.
func formatLine(text string, l *matchLine, colored bool) string {
	ms := slices.Clone(l.matches)
	slices.SortFunc(ms, func(a, b engine.Match) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	col := runewidth.StringWidth(text[:ms[0].Start-l.start]) + 1
	if !colored {
		return fmt.Sprintf("%d:%s", col, text)
	}

	var b strings.Builder
	pos := l.start
	for _, m := range ms {
		end := min(m.End, l.end)
		b.WriteString(text[pos-l.start : m.Start-l.start])
		b.WriteString(highlightOn)
		b.WriteString(text[m.Start-l.start : end-l.start])
		b.WriteString(highlightOff)
		pos = end
	}
	b.WriteString(text[pos-l.start:])
	return fmt.Sprintf("%d:%s", col, b.String())
}
