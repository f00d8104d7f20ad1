package align

import (
	"math"
	"strings"
)

// WordResult is the per-word verdict produced by [Assess].
type WordResult struct {
	// Word is the reference word as written, including punctuation.
	Word string `json:"word"`

	// Matched reports whether the word was found in the transcript, exactly
	// or above [ScoreMatchThreshold] similarity.
	Matched bool `json:"matched"`

	// Similarity is the best similarity score observed for this word, 1 for
	// exact matches and 0 when the transcript was empty.
	Similarity float64 `json:"similarityScore"`
}

// Assessment is the outcome of comparing a full reference text against the
// transcript accumulated during a page reading.
type Assessment struct {
	// Results holds one entry per reference word, in reference order.
	Results []WordResult `json:"perWordResults"`

	// AccuracyPct is the fraction of reference words matched, scaled to
	// 0–100 and rounded to the nearest integer.
	AccuracyPct float64 `json:"accuracyPct"`
}

// Assess compares the expected page text against the spoken transcript and
// produces a per-word verdict set plus an overall accuracy percentage.
//
// Both inputs are normalized and split into word sequences. Each reference
// word is first looked up exactly anywhere in the spoken sequence; failing
// that, its best [Similarity] across all spoken words decides the verdict
// against [ScoreMatchThreshold]. Word order is deliberately ignored — a child
// re-reading a missed word should still get credit for it.
//
// Assess is pure and synchronous: no I/O, no external calls. It serves as the
// local fallback for the richer phoneme-level assessment provider, and as the
// scoring path test suites can exercise offline.
//
// An empty reference yields an empty result set with zero accuracy. An empty
// transcript yields all-unmatched results.
func Assess(referenceText, transcript string) Assessment {
	refWords := strings.Fields(referenceText)
	spoken := strings.Fields(Normalize(transcript))

	if len(refWords) == 0 {
		return Assessment{Results: []WordResult{}}
	}

	results := make([]WordResult, 0, len(refWords))
	matched := 0

	for _, raw := range refWords {
		ref := Normalize(raw)
		res := WordResult{Word: raw}

		for _, sp := range spoken {
			if sp == ref {
				res.Matched = true
				res.Similarity = 1
				break
			}
			if s := Similarity(ref, sp); s > res.Similarity {
				res.Similarity = s
			}
		}
		if !res.Matched && res.Similarity >= ScoreMatchThreshold {
			res.Matched = true
		}
		if res.Matched {
			matched++
		}
		results = append(results, res)
	}

	return Assessment{
		Results:     results,
		AccuracyPct: math.Round(float64(matched) / float64(len(refWords)) * 100),
	}
}
