// Package local implements pronunciation assessment in-process, without any
// external provider.
//
// The scorer wraps the alignment package's page-level scoring: per-word
// exact-or-fuzzy matching against the transcript at the scoring threshold.
// It produces the same result shape as the LLM-backed provider so callers
// can fall back to it transparently, with two reductions: no phoneme
// breakdowns (phoneme data only ever comes from external models) and a
// FryHitPct computed from the embedded sight-word list.
package local

import (
	"context"

	"github.com/readling/readling/internal/align"
	"github.com/readling/readling/pkg/provider/assess"
)

// Scorer assesses page readings using local fuzzy matching only. The zero
// value is ready to use; it is stateless and safe for concurrent use.
type Scorer struct{}

// Compile-time interface assertion.
var _ assess.Provider = (*Scorer)(nil)

// New returns a new local Scorer.
func New() *Scorer {
	return &Scorer{}
}

// Assess implements assess.Provider. It never fails: malformed or empty
// input produces an empty result, and the context is ignored because no I/O
// is performed.
func (s *Scorer) Assess(_ context.Context, req assess.Request) (*assess.Result, error) {
	scored := align.Assess(req.Expected, req.Actual)

	result := &assess.Result{
		Sentence: req.Expected,
		Analysis: make([]assess.WordAnalysis, 0, len(scored.Results)),
		Scores: assess.Scores{
			AccuracyPct: scored.AccuracyPct,
		},
	}

	fryTotal, fryHit := 0, 0
	for _, wr := range scored.Results {
		result.Analysis = append(result.Analysis, assess.WordAnalysis{
			Word:    wr.Word,
			Correct: wr.Matched,
		})
		if IsFryWord(wr.Word) {
			fryTotal++
			if wr.Matched {
				fryHit++
			}
		}
	}
	if fryTotal > 0 {
		result.Scores.FryHitPct = float64(fryHit) / float64(fryTotal) * 100
	}

	return result, nil
}
