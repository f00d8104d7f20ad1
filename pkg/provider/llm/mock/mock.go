// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify prompts and to feed controlled
// responses without a live LLM backend.
//
// Example:
//
//	p := &mock.Provider{
//	    Response: &llm.CompletionResponse{Content: `{"title":"Zip and Zap"}`},
//	}
package mock

import (
	"context"
	"sync"

	"github.com/readling/readling/pkg/provider/llm"
)

// Call records a single invocation of Complete.
type Call struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider. Zero values cause
// Complete to return an empty response and nil error; set Err to inject a
// failure. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete when Err is nil. When nil, an empty
	// CompletionResponse is returned.
	Response *llm.CompletionResponse

	// Responses, when non-empty, is consumed one element per call before
	// falling back to Response. Useful for scripted multi-call tests.
	Responses []*llm.CompletionResponse

	// Err, if non-nil, is returned by Complete.
	Err error

	// Calls records every invocation in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, Call{Ctx: ctx, Req: req})

	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) > 0 {
		resp := p.Responses[0]
		p.Responses = p.Responses[1:]
		return resp, nil
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &llm.CompletionResponse{}, nil
}

// CallCount returns the number of recorded Complete invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
