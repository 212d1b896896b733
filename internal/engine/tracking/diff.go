package tracking

import (
	"strconv"
	"strings"

	"github.com/dshills/piecetree/internal/engine/piecetree"
)

// Default limits for diff computation.
const (
	DefaultMaxDiffLines    = 10000
	DefaultMaxDiffMemoryMB = 100
)

// DiffOptions configures diff computation.
type DiffOptions struct {
	// ContextLines is the number of unchanged lines kept around each
	// change.
	ContextLines int

	IgnoreCase       bool
	IgnoreWhitespace bool
	IgnoreBlankLines bool

	// MaxLines and MaxMemoryMB bound the Myers search. Beyond them the
	// differing middle is reported as one replacement. Zero selects the
	// default, negative disables the limit.
	MaxLines    int
	MaxMemoryMB int
}

// DefaultDiffOptions returns default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		ContextLines: 3,
		MaxLines:     DefaultMaxDiffLines,
		MaxMemoryMB:  DefaultMaxDiffMemoryMB,
	}
}

// DiffType is the kind of one diff line.
type DiffType uint8

const (
	DiffEqual DiffType = iota
	DiffInsert
	DiffDelete
)

func (dt DiffType) String() string {
	switch dt {
	case DiffEqual:
		return "equal"
	case DiffInsert:
		return "insert"
	case DiffDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Hunk is a run of changes with surrounding context. Lines carry a
// one-byte prefix: ' ' for context, '-' for deleted and '+' for inserted
// lines. Starts are 0-indexed.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []string
}

// DiffResult is the result of a line diff.
type DiffResult struct {
	Hunks        []Hunk
	OldLineCount int
	NewLineCount int
}

// HasChanges reports whether the inputs differ.
func (dr DiffResult) HasChanges() bool { return len(dr.Hunks) > 0 }

// InsertedLines returns the number of inserted lines.
func (dr DiffResult) InsertedLines() int { return dr.count('+') }

// DeletedLines returns the number of deleted lines.
func (dr DiffResult) DeletedLines() int { return dr.count('-') }

func (dr DiffResult) count(prefix byte) int {
	n := 0
	for _, h := range dr.Hunks {
		for _, l := range h.Lines {
			if l[0] == prefix {
				n++
			}
		}
	}
	return n
}

// LineSource is anything that can iterate its lines, such as a piece
// tree or a snapshot.
type LineSource interface {
	Lines() *piecetree.Lines
}

// Diff compares the lines of two documents.
func Diff(old, cur LineSource, opts DiffOptions) DiffResult {
	return diffLines(collectLines(old), collectLines(cur), opts)
}

// DiffStrings compares the lines of two strings.
func DiffStrings(old, cur string, opts DiffOptions) DiffResult {
	return diffLines(splitLines(old), splitLines(cur), opts)
}

// collectLines returns the lines without terminators. The empty line that
// follows a final newline is not reported.
func collectLines(src LineSource) []string {
	var out []string
	it := src.Lines()
	for {
		l, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, strings.TrimSuffix(l.String(), "\n"))
	}
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

type editOp struct {
	kind DiffType
	// Line indices. For an insert, old is the old line it precedes; for a
	// delete, cur is the new line it precedes.
	old, cur int
}

func diffLines(a, b []string, opts DiffOptions) DiffResult {
	eq := comparer(opts)

	// Common prefix and suffix never take part in the search.
	pre := 0
	for pre < len(a) && pre < len(b) && eq(a[pre], b[pre]) {
		pre++
	}
	suf := 0
	for suf < len(a)-pre && suf < len(b)-pre && eq(a[len(a)-1-suf], b[len(b)-1-suf]) {
		suf++
	}

	ops := make([]editOp, 0, len(a)+len(b))
	for i := 0; i < pre; i++ {
		ops = append(ops, editOp{DiffEqual, i, i})
	}
	midA, midB := a[pre:len(a)-suf], b[pre:len(b)-suf]
	var mid []editOp
	if withinLimits(len(midA), len(midB), opts) {
		mid = myers(midA, midB, eq)
	} else {
		mid = replaceAll(len(midA), len(midB))
	}
	for _, op := range mid {
		ops = append(ops, editOp{op.kind, op.old + pre, op.cur + pre})
	}
	for i := 0; i < suf; i++ {
		ops = append(ops, editOp{DiffEqual, len(a) - suf + i, len(b) - suf + i})
	}

	return DiffResult{
		Hunks:        buildHunks(ops, a, b, max(opts.ContextLines, 0)),
		OldLineCount: len(a),
		NewLineCount: len(b),
	}
}

func comparer(opts DiffOptions) func(x, y string) bool {
	norm := func(s string) string {
		if opts.IgnoreCase {
			s = strings.ToLower(s)
		}
		if opts.IgnoreWhitespace {
			s = strings.TrimSpace(s)
		}
		return s
	}
	return func(x, y string) bool {
		x, y = norm(x), norm(y)
		if opts.IgnoreBlankLines && x == "" && y == "" {
			return true
		}
		return x == y
	}
}

func withinLimits(n, m int, opts DiffOptions) bool {
	maxLines := opts.MaxLines
	if maxLines == 0 {
		maxLines = DefaultMaxDiffLines
	}
	if maxLines > 0 && (n > maxLines || m > maxLines) {
		return false
	}
	maxMB := opts.MaxMemoryMB
	if maxMB == 0 {
		maxMB = DefaultMaxDiffMemoryMB
	}
	if maxMB > 0 {
		// One V vector of 2(n+m)+2 ints is kept per edit distance step.
		d := int64(n + m)
		if d*(2*d+2)*8>>20 > int64(maxMB) {
			return false
		}
	}
	return true
}

func replaceAll(n, m int) []editOp {
	ops := make([]editOp, 0, n+m)
	for i := 0; i < n; i++ {
		ops = append(ops, editOp{DiffDelete, i, 0})
	}
	for j := 0; j < m; j++ {
		ops = append(ops, editOp{DiffInsert, n, j})
	}
	return ops
}

// myers returns a shortest edit script turning a into b.
func myers(a, b []string, eq func(x, y string) bool) []editOp {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return replaceAll(n, m)
	}
	limit := n + m
	off := limit + 1
	v := make([]int, 2*limit+3)

	var trace [][]int
	for d := 0; d <= limit; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
				x = v[off+k+1]
			} else {
				x = v[off+k-1] + 1
			}
			y := x - k
			for x < n && y < m && eq(a[x], b[y]) {
				x++
				y++
			}
			v[off+k] = x
			if x >= n && y >= m {
				return backtrack(trace, n, m, off)
			}
		}
	}
	return replaceAll(n, m)
}

// backtrack walks the saved V vectors from (n, m) back to the origin.
// trace[d] holds V as it was before step d.
func backtrack(trace [][]int, n, m, off int) []editOp {
	var ops []editOp
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[off+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, editOp{DiffEqual, x, y})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			ops = append(ops, editOp{DiffInsert, x, y - 1})
		} else {
			ops = append(ops, editOp{DiffDelete, x - 1, y})
		}
		x, y = prevX, prevY
	}
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// buildHunks groups changes whose context overlaps into hunks.
func buildHunks(ops []editOp, a, b []string, ctx int) []Hunk {
	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].kind == DiffEqual {
			i++
			continue
		}
		start := max(0, i-ctx)
		end := i
		for end < len(ops) {
			if ops[end].kind != DiffEqual {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == DiffEqual {
				run++
			}
			if run == len(ops) || run-end > 2*ctx {
				break
			}
			end = run
		}
		stop := min(len(ops), end+ctx)

		h := Hunk{OldStart: ops[start].old, NewStart: ops[start].cur}
		for _, op := range ops[start:stop] {
			switch op.kind {
			case DiffEqual:
				h.Lines = append(h.Lines, " "+a[op.old])
				h.OldCount++
				h.NewCount++
			case DiffDelete:
				h.Lines = append(h.Lines, "-"+a[op.old])
				h.OldCount++
			case DiffInsert:
				h.Lines = append(h.Lines, "+"+b[op.cur])
				h.NewCount++
			}
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// UnifiedDiff formats result as a unified diff.
func UnifiedDiff(result DiffResult, oldName, newName string) string {
	if !result.HasChanges() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- " + oldName + "\n")
	sb.WriteString("+++ " + newName + "\n")
	for _, h := range result.Hunks {
		sb.WriteString("@@ -")
		sb.WriteString(hunkRange(h.OldStart, h.OldCount))
		sb.WriteString(" +")
		sb.WriteString(hunkRange(h.NewStart, h.NewCount))
		sb.WriteString(" @@\n")
		for _, l := range h.Lines {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hunkRange(start, count int) string {
	if count == 0 {
		return strconv.Itoa(start) + ",0"
	}
	return strconv.Itoa(start+1) + "," + strconv.Itoa(count)
}
