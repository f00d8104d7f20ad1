package align_test

import (
	"testing"

	"github.com/readling/readling/internal/align"
)

func TestAssess_PerfectReading(t *testing.T) {
	t.Parallel()

	got := align.Assess("Zip and Zap are space pirates.", "zip and zap are space pirates")

	if len(got.Results) != 6 {
		t.Fatalf("len(Results) = %d, want 6", len(got.Results))
	}
	for _, r := range got.Results {
		if !r.Matched {
			t.Errorf("word %q: matched = false, want true", r.Word)
		}
		if r.Similarity != 1 {
			t.Errorf("word %q: similarity = %v, want 1", r.Word, r.Similarity)
		}
	}
	if got.AccuracyPct != 100 {
		t.Errorf("AccuracyPct = %v, want 100", got.AccuracyPct)
	}
}

func TestAssess_NearMissBelowScoringThreshold(t *testing.T) {
	t.Parallel()

	// similarity("past", "pass") = 0.75: below the 0.8 scoring threshold, so
	// the word is unmatched here even though live highlighting would have
	// accepted it at 0.7.
	got := align.Assess("past", "pass")

	if len(got.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(got.Results))
	}
	r := got.Results[0]
	if r.Matched {
		t.Error("matched = true, want false below scoring threshold")
	}
	if r.Similarity != 0.75 {
		t.Errorf("similarity = %v, want 0.75", r.Similarity)
	}
	if got.AccuracyPct != 0 {
		t.Errorf("AccuracyPct = %v, want 0", got.AccuracyPct)
	}

	// The same pair clears the live threshold at the other call site.
	if idx := align.FindBestMatch([]string{"past"}, "pass", align.LiveMatchThreshold); idx != 0 {
		t.Errorf("live FindBestMatch = %d, want 0", idx)
	}
}

func TestAssess_OutOfOrderStillCredits(t *testing.T) {
	t.Parallel()

	// Exact matches are accepted anywhere in the spoken sequence; word order
	// is not scored.
	got := align.Assess("zip and zap", "zap and zip")
	if got.AccuracyPct != 100 {
		t.Errorf("AccuracyPct = %v, want 100", got.AccuracyPct)
	}
}

func TestAssess_PartialAccuracyRounds(t *testing.T) {
	t.Parallel()

	// 2 of 3 matched: 66.666… rounds to 67.
	got := align.Assess("zip and elephant", "zip and")
	if got.AccuracyPct != 67 {
		t.Errorf("AccuracyPct = %v, want 67", got.AccuracyPct)
	}
	if got.Results[2].Matched {
		t.Error("unspoken word reported as matched")
	}
}

func TestAssess_EmptyInputs(t *testing.T) {
	t.Parallel()

	got := align.Assess("", "whatever was said")
	if len(got.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0 for empty reference", len(got.Results))
	}
	if got.AccuracyPct != 0 {
		t.Errorf("AccuracyPct = %v, want 0", got.AccuracyPct)
	}

	got = align.Assess("zip and zap", "")
	if len(got.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(got.Results))
	}
	for _, r := range got.Results {
		if r.Matched || r.Similarity != 0 {
			t.Errorf("word %q: (%v, %v), want unmatched with 0 similarity", r.Word, r.Matched, r.Similarity)
		}
	}
}
