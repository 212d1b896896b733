package piecetree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// BoundKind says how a Bound limits a range.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one end of a Range.
type Bound struct {
	Kind BoundKind
	Pos  uint64
}

// Incl returns a bound that includes pos.
func Incl(pos uint64) Bound { return Bound{Kind: Included, Pos: pos} }

// Excl returns a bound that excludes pos.
func Excl(pos uint64) Bound { return Bound{Kind: Excluded, Pos: pos} }

// Range is a span of byte positions given by two bounds.
type Range struct {
	Start Bound
	End   Bound
}

// Span returns the half-open range [start, end).
func Span(start, end uint64) Range {
	return Range{Start: Incl(start), End: Excl(end)}
}

// From returns the range from start to the end of the content.
func From(start uint64) Range { return Range{Start: Incl(start)} }

// To returns the range from the beginning up to, not including, end.
func To(end uint64) Range { return Range{End: Excl(end)} }

// Full returns the range covering all content.
func Full() Range { return Range{} }

// Resolve converts r to a half-open [start, end) within length bytes.
func (r Range) Resolve(length uint64) (start, end uint64, err error) {
	switch r.Start.Kind {
	case Included:
		start = r.Start.Pos
	case Excluded:
		if r.Start.Pos >= length {
			return 0, 0, outOfBounds(r.Start.Pos, length)
		}
		start = r.Start.Pos + 1
	}
	switch r.End.Kind {
	case Unbounded:
		end = length
	case Included:
		if r.End.Pos >= length {
			return 0, 0, outOfBounds(r.End.Pos, length)
		}
		end = r.End.Pos + 1
	case Excluded:
		end = r.End.Pos
	}
	if start > length {
		return 0, 0, outOfBounds(start, length)
	}
	if start > end {
		return 0, 0, errors.Wrapf(ErrInvalidRange, "%v", r)
	}
	if end > length {
		return 0, 0, outOfBounds(end, length)
	}
	return start, end, nil
}

func (r Range) String() string {
	var lo, hi string
	switch r.Start.Kind {
	case Included:
		lo = fmt.Sprintf("[%d", r.Start.Pos)
	case Excluded:
		lo = fmt.Sprintf("(%d", r.Start.Pos)
	default:
		lo = "(.."
	}
	switch r.End.Kind {
	case Included:
		hi = fmt.Sprintf("%d]", r.End.Pos)
	case Excluded:
		hi = fmt.Sprintf("%d)", r.End.Pos)
	default:
		hi = "..)"
	}
	return lo + ", " + hi
}
