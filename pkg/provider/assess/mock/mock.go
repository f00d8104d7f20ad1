// Package mock provides a test double for the assess.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/readling/readling/pkg/provider/assess"
)

// Provider is a mock implementation of assess.Provider. Zero values cause
// Assess to return an empty Result; set Result or Err to control the
// outcome. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Assess when Err is nil.
	Result *assess.Result

	// Err, if non-nil, is returned by Assess.
	Err error

	// Requests records every request passed to Assess.
	Requests []assess.Request
}

// Compile-time interface assertion.
var _ assess.Provider = (*Provider)(nil)

// Assess implements assess.Provider.
func (p *Provider) Assess(_ context.Context, req assess.Request) (*assess.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Result != nil {
		return p.Result, nil
	}
	return &assess.Result{Sentence: req.Expected}, nil
}

// CallCount returns the number of recorded Assess invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}
