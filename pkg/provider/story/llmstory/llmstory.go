// Package llmstory implements storybook generation on top of an
// [llm.Provider].
//
// The generator sends a single completion request instructing the model to
// return the full book as a strict JSON document, then validates the
// structure before handing it to callers: page numbering is normalised, blank
// words are dropped, and a book with no usable pages is an error rather than
// a silently empty result.
package llmstory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readling/readling/pkg/book"
	"github.com/readling/readling/pkg/provider/llm"
	"github.com/readling/readling/pkg/provider/story"
)

const (
	defaultTemperature = 0.8
	defaultNumPages    = 6
)

// systemPrompt instructs the model to produce the storybook JSON document.
// The phoneme inventory is ARPABET-style; the tokens are opaque to this
// system and flow through to the assessment provider unchanged.
const systemPrompt = `You are a children's storybook author for a reading-practice app.

Write a short, warm, age-appropriate story at the requested reading level. Use simple sentence structures and high-frequency sight words appropriate for the level.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "title": "<story title>",
  "readingLevel": "<the requested reading level>",
  "pages": [
    {
      "pageNumber": 1,
      "words": [
        {"text": "<word exactly as it appears in the sentence, with punctuation>", "phonemes": ["<ARPABET phoneme>", "..."]}
      ],
      "imagePrompt": "<a one-sentence illustration description for this page>"
    }
  ]
}

Every word of every page sentence must appear as its own entry in "words", in reading order. Include ARPABET phonemes for each word.`

// Option is a functional option for configuring a [Generator].
type Option func(*Generator)

// WithTemperature sets the LLM sampling temperature. Default: 0.8 — story
// text benefits from some variety.
func WithTemperature(temp float64) Option {
	return func(g *Generator) {
		g.temperature = temp
	}
}

// WithMaxTokens caps the completion length. Zero (the default) uses the
// backend's default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// Generator produces storybooks using an [llm.Provider]. It is safe for
// concurrent use.
type Generator struct {
	llm         llm.Provider
	temperature float64
	maxTokens   int
}

// Compile-time interface assertion.
var _ story.Provider = (*Generator)(nil)

// New returns a [Generator] backed by the given [llm.Provider].
func New(provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		llm:         provider,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate implements [story.Provider].
func (g *Generator) Generate(ctx context.Context, req story.Request) (*book.Book, error) {
	if req.ReadingLevel == "" {
		return nil, fmt.Errorf("llmstory: reading level must not be empty")
	}
	numPages := req.NumPages
	if numPages <= 0 {
		numPages = defaultNumPages
	}

	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: buildUserPrompt(req, numPages)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llmstory: complete: %w", err)
	}

	b, err := parseBook(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("llmstory: %w", err)
	}
	if b.ReadingLevel == "" {
		b.ReadingLevel = req.ReadingLevel
	}
	b.Theme = req.Theme
	return b, nil
}

// buildUserPrompt renders the request as the user message.
func buildUserPrompt(req story.Request, numPages int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reading level: %s\nPages: %d\n", req.ReadingLevel, numPages)
	if req.Theme != "" {
		fmt.Fprintf(&sb, "Theme: %s\n", req.Theme)
	}
	if req.Hero != "" {
		fmt.Fprintf(&sb, "Hero: %s\n", req.Hero)
	}
	if req.Setting != "" {
		fmt.Fprintf(&sb, "Setting: %s\n", req.Setting)
	}
	return sb.String()
}

// parseBook unmarshals and validates the model's JSON output. Markdown code
// fences are stripped first; some models wrap JSON despite instructions.
func parseBook(content string) (*book.Book, error) {
	cleaned := stripMarkdown(content)

	var b book.Book
	if err := json.Unmarshal([]byte(cleaned), &b); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if b.Title == "" {
		return nil, fmt.Errorf("parse response: missing title")
	}

	pages := b.Pages[:0]
	for _, p := range b.Pages {
		words := p.Words[:0]
		for _, w := range p.Words {
			if strings.TrimSpace(w.Text) != "" {
				words = append(words, w)
			}
		}
		p.Words = words
		if len(p.Words) > 0 {
			p.PageNumber = len(pages) + 1
			pages = append(pages, p)
		}
	}
	b.Pages = pages

	if len(b.Pages) == 0 {
		return nil, fmt.Errorf("parse response: no usable pages")
	}
	return &b, nil
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
