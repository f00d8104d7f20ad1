package local

import "github.com/readling/readling/internal/align"

// fryWords is the first hundred of the Fry sight-word list, the
// high-frequency vocabulary used as a proxy for reading level.
var fryWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "of", "and", "a", "to", "in", "is", "you", "that", "it",
		"he", "was", "for", "on", "are", "as", "with", "his", "they", "i",
		"at", "be", "this", "have", "from", "or", "one", "had", "by", "word",
		"but", "not", "what", "all", "were", "we", "when", "your", "can", "said",
		"there", "use", "an", "each", "which", "she", "do", "how", "their", "if",
		"will", "up", "other", "about", "out", "many", "then", "them", "these", "so",
		"some", "her", "would", "make", "like", "him", "into", "time", "has", "look",
		"two", "more", "write", "go", "see", "number", "no", "way", "could", "people",
		"my", "than", "first", "water", "been", "call", "who", "oil", "now", "find",
		"long", "down", "day", "did", "get", "come", "made", "may", "part", "over",
	} {
		fryWords[w] = struct{}{}
	}
}

// IsFryWord reports whether word (normalized before lookup) is on the
// embedded Fry sight-word list.
func IsFryWord(word string) bool {
	_, ok := fryWords[align.Normalize(word)]
	return ok
}
