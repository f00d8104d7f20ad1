// Package llmassess implements pronunciation assessment on top of an
// [llm.Provider].
//
// The assessor sends the expected text and the transcript to the model and
// asks for a strict JSON verdict with per-word phoneme breakdowns. Unlike
// the local fallback, parse failures here are errors: the caller's failover
// logic routes the request to the local scorer instead of surfacing a
// half-empty result.
package llmassess

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readling/readling/pkg/provider/assess"
	"github.com/readling/readling/pkg/provider/llm"
)

const defaultTemperature = 0.1

// systemPrompt instructs the model to produce the assessment JSON document.
const systemPrompt = `You are a reading tutor assessing a child's oral reading of a sentence.

You are given the expected sentence and a speech-recognition transcript of what the child actually said. Judge each expected word: was it read correctly? Provide an ARPABET phoneme breakdown per word marking which phonemes the child likely produced.

Be charitable about speech-recognition artifacts (homophones, joined words) but strict about genuinely missing or wrong words.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "sentence": "<the expected sentence>",
  "analysis": [
    {
      "word": "<expected word>",
      "phonemeBreakdown": [{"phoneme": "<ARPABET token>", "hit": true}],
      "correct": true
    }
  ],
  "scores": {"accuracyPct": 0.0, "fryHitPct": 0.0, "phonemeHitPct": 0.0}
}`

// Option is a functional option for configuring an [Assessor].
type Option func(*Assessor)

// WithTemperature sets the LLM sampling temperature. Default: 0.1 —
// assessment should be as deterministic as the backend allows.
func WithTemperature(temp float64) Option {
	return func(a *Assessor) {
		a.temperature = temp
	}
}

// Assessor assesses page readings using an [llm.Provider]. It is safe for
// concurrent use.
type Assessor struct {
	llm         llm.Provider
	temperature float64
}

// Compile-time interface assertion.
var _ assess.Provider = (*Assessor)(nil)

// New returns an [Assessor] backed by the given [llm.Provider].
func New(provider llm.Provider, opts ...Option) *Assessor {
	a := &Assessor{
		llm:         provider,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assess implements assess.Provider.
func (a *Assessor) Assess(ctx context.Context, req assess.Request) (*assess.Result, error) {
	if strings.TrimSpace(req.Expected) == "" {
		return nil, fmt.Errorf("llmassess: expected text must not be empty")
	}

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  a.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf("Expected: %s\nTranscript: %s", req.Expected, req.Actual)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llmassess: complete: %w", err)
	}

	result, err := parseResult(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("llmassess: %w", err)
	}
	if result.Sentence == "" {
		result.Sentence = req.Expected
	}
	return result, nil
}

// parseResult unmarshals and validates the model's JSON output.
func parseResult(content string) (*assess.Result, error) {
	cleaned := stripMarkdown(content)

	var r assess.Result
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(r.Analysis) == 0 {
		return nil, fmt.Errorf("parse response: empty analysis")
	}
	return &r, nil
}

// stripMarkdown removes a surrounding markdown code fence, if present.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
