package llmassess_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/readling/readling/pkg/provider/assess"
	"github.com/readling/readling/pkg/provider/assess/llmassess"
	"github.com/readling/readling/pkg/provider/llm"
	llmmock "github.com/readling/readling/pkg/provider/llm/mock"
)

const validResultJSON = `{
  "sentence": "The cat sat.",
  "analysis": [
    {"word": "The", "phonemeBreakdown": [{"phoneme": "DH", "hit": true}, {"phoneme": "AH0", "hit": true}], "correct": true},
    {"word": "cat", "phonemeBreakdown": [{"phoneme": "K", "hit": true}, {"phoneme": "AE1", "hit": false}, {"phoneme": "T", "hit": true}], "correct": false},
    {"word": "sat.", "phonemeBreakdown": [{"phoneme": "S", "hit": true}, {"phoneme": "AE1", "hit": true}, {"phoneme": "T", "hit": true}], "correct": true}
  ],
  "scores": {"accuracyPct": 67, "fryHitPct": 100, "phonemeHitPct": 88}
}`

func TestAssess(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		Response: &llm.CompletionResponse{Content: validResultJSON},
	}
	a := llmassess.New(p)

	result, err := a.Assess(context.Background(), assess.Request{
		Expected: "The cat sat.",
		Actual:   "the cut sat",
	})
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}

	if result.Sentence != "The cat sat." {
		t.Errorf("Sentence = %q, want 'The cat sat.'", result.Sentence)
	}
	if len(result.Analysis) != 3 {
		t.Fatalf("len(Analysis) = %d, want 3", len(result.Analysis))
	}
	if result.Analysis[1].Correct {
		t.Error("Analysis[1] (cat) Correct = true, want false")
	}
	if got := len(result.Analysis[1].PhonemeBreakdown); got != 3 {
		t.Errorf("len(Analysis[1].PhonemeBreakdown) = %d, want 3", got)
	}
	if result.Scores.PhonemeHitPct != 88 {
		t.Errorf("PhonemeHitPct = %v, want 88", result.Scores.PhonemeHitPct)
	}
}

func TestAssess_PromptContents(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		Response: &llm.CompletionResponse{Content: validResultJSON},
	}
	a := llmassess.New(p, llmassess.WithTemperature(0))

	_, err := a.Assess(context.Background(), assess.Request{
		Expected: "The cat sat.",
		Actual:   "the cut sat",
	})
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}

	req := p.Calls[0].Req
	user := req.Messages[0].Content
	if !strings.Contains(user, "Expected: The cat sat.") {
		t.Errorf("user prompt missing expected text:\n%s", user)
	}
	if !strings.Contains(user, "Transcript: the cut sat") {
		t.Errorf("user prompt missing transcript:\n%s", user)
	}
}

func TestAssess_StripsMarkdownFence(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		Response: &llm.CompletionResponse{Content: "```json\n" + validResultJSON + "\n```"},
	}
	a := llmassess.New(p)

	result, err := a.Assess(context.Background(), assess.Request{Expected: "The cat sat."})
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}
	if len(result.Analysis) != 3 {
		t.Errorf("len(Analysis) = %d, want 3", len(result.Analysis))
	}
}

func TestAssess_FillsMissingSentence(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		Response: &llm.CompletionResponse{Content: `{"analysis":[{"word":"hi","correct":true}]}`},
	}
	a := llmassess.New(p)

	result, err := a.Assess(context.Background(), assess.Request{Expected: "hi"})
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}
	if result.Sentence != "hi" {
		t.Errorf("Sentence = %q, want request's expected text", result.Sentence)
	}
}

func TestAssess_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		mock     *llmmock.Provider
		wantMsg  string
	}{
		{
			name:     "empty expected text",
			expected: "  ",
			mock:     &llmmock.Provider{},
			wantMsg:  "expected text",
		},
		{
			name:     "backend failure",
			expected: "The cat sat.",
			mock:     &llmmock.Provider{Err: errors.New("backend down")},
			wantMsg:  "complete",
		},
		{
			name:     "malformed json",
			expected: "The cat sat.",
			mock:     &llmmock.Provider{Response: &llm.CompletionResponse{Content: "not json"}},
			wantMsg:  "parse response",
		},
		{
			name:     "empty analysis",
			expected: "The cat sat.",
			mock:     &llmmock.Provider{Response: &llm.CompletionResponse{Content: `{"sentence":"x","analysis":[]}`}},
			wantMsg:  "empty analysis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := llmassess.New(tt.mock)
			_, err := a.Assess(context.Background(), assess.Request{Expected: tt.expected})
			if err == nil {
				t.Fatal("Assess() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}
