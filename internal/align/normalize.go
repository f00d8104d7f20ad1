package align

import "strings"

// punctuation is the fixed set of characters stripped by Normalize. It covers
// ASCII punctuation plus the curly quote variants that story text and browser
// speech engines commonly emit.
const punctuation = ".,!?;:\"'()[]{}<>/\\|@#$%^&*_~`’‘“”—–-"

// Normalize prepares a word or phrase for comparison: it lower-cases the
// input, strips punctuation, collapses internal whitespace runs to single
// spaces, and trims leading and trailing whitespace.
//
// Every reference word and every recognised word must pass through Normalize
// before any equality or similarity check — the reference word "pirates."
// must not fail to match the spoken "pirates" over a trailing full stop.
//
// Normalize is total and idempotent. Empty input yields the empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, lowered)

	// Fields splits on any whitespace run, so rejoining collapses and trims
	// in one pass.
	return strings.Join(strings.Fields(stripped), " ")
}
