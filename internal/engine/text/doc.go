// Package text decodes byte streams into UTF-8 characters and grapheme
// clusters in either direction.
//
// Everything here reads through a ByteCursor: a position between two bytes
// that can step forward or backward. Chars layers a table-driven UTF-8
// automaton over the cursor and never fails: malformed input becomes
// U+FFFD using the maximal-subpart rule, and the backward automaton places
// replacement characters at exactly the offsets the forward one does.
// Graphemes groups Chars into extended grapheme clusters (UAX #29 rules
// GB3 through GB13).
//
// Cursors hold a position, not a snapshot. Interleaving Next and Prev is
// allowed; a Prev right after a Next returns the same element.
package text
