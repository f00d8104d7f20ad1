// Package assess defines the Provider interface for pronunciation assessment
// backends.
//
// An assessment provider compares the expected page text against what the
// reader actually said and returns a per-word verdict with phoneme-level
// detail and summary scores. The phoneme hit/miss data comes from the
// backing model — it is never computed locally. The in-process fallback
// implementation ([github.com/readling/readling/pkg/provider/assess/local])
// returns the same shape without phoneme breakdowns.
package assess

import "context"

// Request carries one completed page reading to assess.
type Request struct {
	// Expected is the page's reference text.
	Expected string

	// Actual is the transcript accumulated while the page was read aloud.
	Actual string
}

// PhonemeResult is one phoneme of one word, with the provider's verdict on
// whether the reader produced it.
type PhonemeResult struct {
	// Phoneme is an ARPABET-style token (e.g., "IH1").
	Phoneme string `json:"phoneme"`

	// Hit reports whether the phoneme was judged correctly produced.
	Hit bool `json:"hit"`
}

// WordAnalysis is the per-word assessment detail.
type WordAnalysis struct {
	// Word is the reference word as written.
	Word string `json:"word"`

	// PhonemeBreakdown lists the word's phonemes with hit/miss verdicts.
	// Empty when the provider has no phoneme data (e.g., the local fallback).
	PhonemeBreakdown []PhonemeResult `json:"phonemeBreakdown,omitempty"`

	// Correct reports whether the word as a whole was judged correctly read.
	Correct bool `json:"correct"`
}

// Scores summarises a page reading.
type Scores struct {
	// AccuracyPct is the percentage of reference words read correctly.
	AccuracyPct float64 `json:"accuracyPct"`

	// FryHitPct is the percentage of Fry sight words in the reference that
	// were read correctly. Zero when the reference has no Fry words.
	FryHitPct float64 `json:"fryHitPct"`

	// PhonemeHitPct is the percentage of phonemes judged correctly produced.
	// Zero when no phoneme data is available.
	PhonemeHitPct float64 `json:"phonemeHitPct"`
}

// Result is a full pronunciation assessment for one page reading.
type Result struct {
	// Sentence is the expected text the assessment refers to.
	Sentence string `json:"sentence"`

	// Analysis holds one entry per reference word, in reference order.
	Analysis []WordAnalysis `json:"analysis"`

	// Scores are the summary percentages.
	Scores Scores `json:"scores"`
}

// Provider is the abstraction over any pronunciation assessment backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Assess evaluates one completed page reading.
	Assess(ctx context.Context, req Request) (*Result, error)
}
