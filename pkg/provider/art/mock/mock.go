// Package mock provides a test double for the art.Provider interface.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/readling/readling/pkg/provider/art"
)

// Provider is a mock implementation of art.Provider. By default it returns a
// deterministic placeholder URL per call; set Err to inject a failure. Safe
// for concurrent use.
type Provider struct {
	mu sync.Mutex

	// URL, if non-empty, is returned verbatim from every Illustrate call.
	URL string

	// Err, if non-nil, is returned by Illustrate.
	Err error

	// Prompts records every prompt passed to Illustrate.
	Prompts []string
}

// Compile-time interface assertion.
var _ art.Provider = (*Provider)(nil)

// Illustrate implements art.Provider.
func (p *Provider) Illustrate(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Prompts = append(p.Prompts, prompt)

	if p.Err != nil {
		return "", p.Err
	}
	if p.URL != "" {
		return p.URL, nil
	}
	return fmt.Sprintf("https://images.example/mock-%d.png", len(p.Prompts)), nil
}

// CallCount returns the number of recorded Illustrate invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Prompts)
}
