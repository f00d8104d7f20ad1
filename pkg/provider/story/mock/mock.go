// Package mock provides a test double for the story.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/readling/readling/pkg/book"
	"github.com/readling/readling/pkg/provider/story"
)

// Provider is a mock implementation of story.Provider. Zero values cause
// Generate to return a minimal one-page book; set Book or Err to control the
// outcome. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Book is returned by Generate when Err is nil.
	Book *book.Book

	// Err, if non-nil, is returned by Generate.
	Err error

	// Requests records every request passed to Generate.
	Requests []story.Request
}

// Compile-time interface assertion.
var _ story.Provider = (*Provider)(nil)

// Generate implements story.Provider.
func (p *Provider) Generate(_ context.Context, req story.Request) (*book.Book, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Book != nil {
		return p.Book, nil
	}
	return &book.Book{
		Title:        "Zip and Zap",
		ReadingLevel: req.ReadingLevel,
		Theme:        req.Theme,
		Pages: []book.Page{
			{
				PageNumber: 1,
				Words: []book.Word{
					{Text: "Zip", Phonemes: []string{"Z", "IH1", "P"}},
					{Text: "and", Phonemes: []string{"AH0", "N", "D"}},
					{Text: "Zap", Phonemes: []string{"Z", "AE1", "P"}},
				},
				ImagePrompt: "two small robots waving",
			},
		},
	}, nil
}

// CallCount returns the number of recorded Generate invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}
