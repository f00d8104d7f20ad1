package align

import "strings"

// Matching thresholds for the two call sites of [FindBestMatch].
//
// Live highlighting favours responsiveness over precision: a near-miss that
// keeps the highlight moving is better than a stalled page. Post-hoc scoring
// favours precision over recall: a mispronounced word should not count as
// read correctly. The asymmetry is deliberate.
const (
	// LiveMatchThreshold is the minimum fuzzy similarity accepted while
	// driving live word highlighting.
	LiveMatchThreshold = 0.7

	// ScoreMatchThreshold is the minimum fuzzy similarity accepted when
	// scoring a completed page reading.
	ScoreMatchThreshold = 0.8
)

// FindBestMatch returns the index of the reference word that best matches the
// spoken word, or -1 when no word qualifies. Both inputs are normalized with
// [Normalize] before comparison.
//
// Match categories are tried in strict priority order; the first category with
// any hit wins and later categories are not consulted:
//
//  1. Exact — the normalized spoken word equals a normalized reference word.
//     The first occurrence scanning from the start of the list wins.
//  2. Substring — one normalized word contains the other. First qualifying
//     index wins.
//  3. Fuzzy — the reference word with the highest [Similarity] to the spoken
//     word, accepted only when that score reaches threshold. Ties keep the
//     earliest index.
//
// The exact tie-break does not track reading position: a word repeated later
// in the sentence resolves to its first occurrence. Known behaviour, kept.
//
// FindBestMatch is total: an empty reference list, an empty spoken word, or a
// word that normalizes to nothing all return -1.
func FindBestMatch(reference []string, spoken string, threshold float64) int {
	word := Normalize(spoken)
	if word == "" || len(reference) == 0 {
		return -1
	}

	normalized := make([]string, len(reference))
	for i, ref := range reference {
		normalized[i] = Normalize(ref)
	}

	// Category 1: exact.
	for i, ref := range normalized {
		if ref != "" && ref == word {
			return i
		}
	}

	// Category 2: substring, either direction.
	for i, ref := range normalized {
		if ref == "" {
			continue
		}
		if strings.Contains(ref, word) || strings.Contains(word, ref) {
			return i
		}
	}

	// Category 3: fuzzy.
	best := -1
	bestScore := 0.0
	for i, ref := range normalized {
		if ref == "" {
			continue
		}
		if s := Similarity(ref, word); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best >= 0 && bestScore >= threshold {
		return best
	}
	return -1
}
