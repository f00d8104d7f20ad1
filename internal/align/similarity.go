package align

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Similarity returns a score in [0, 1] describing how close two words are,
// computed as 1 - editDistance(a, b) / max(len(a), len(b)) using classic
// Levenshtein edit distance with unit insertion, deletion, and substitution
// costs. Lengths are measured in runes.
//
// Two empty strings are identical by vacuity and score 1; exactly one empty
// string scores 0. The result does not depend on argument order.
//
// Callers are expected to pass already-normalized words; Similarity itself
// performs no normalization.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}

	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}
