package text

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ClusterWidth returns the number of terminal columns a single grapheme
// cluster occupies.
func ClusterWidth(cluster []byte) int {
	if len(cluster) == 0 {
		return 0
	}
	if c := cluster[0]; c < utf8.RuneSelf && len(cluster) == 1 {
		if c < 0x20 || c == 0x7F {
			return 0
		}
		return 1
	}

	first, _ := utf8.DecodeRune(cluster)
	switch graphemeProp(first) {
	case gbRegionalIndicator:
		return 2
	case gbExtPict:
		// Emoji presentation selector or a ZWJ sequence renders wide.
		for i := 0; i < len(cluster); {
			r, size := utf8.DecodeRune(cluster[i:])
			if r == 0xFE0F || r == 0x200D {
				return 2
			}
			i += size
		}
	}
	return runewidth.StringWidth(string(cluster))
}
