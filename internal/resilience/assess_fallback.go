package resilience

import (
	"context"
	"errors"
	"log/slog"

	"github.com/readling/readling/pkg/provider/assess"
)

// AssessFallback implements [assess.Provider] with automatic failover from a
// primary (typically LLM-backed) assessor to a fallback (typically the local
// scorer). The primary sits behind a [CircuitBreaker], so after repeated
// failures requests route straight to the fallback until the backend
// recovers.
//
// The fallback itself is not circuit-protected: the local scorer cannot
// fail, and if a remote fallback fails its error is simply returned.
type AssessFallback struct {
	primary     assess.Provider
	primaryName string
	fallback    assess.Provider
	breaker     *CircuitBreaker
}

// Compile-time interface assertion.
var _ assess.Provider = (*AssessFallback)(nil)

// NewAssessFallback creates an [AssessFallback]. primaryName labels the
// primary in log messages and breaker diagnostics.
func NewAssessFallback(primary assess.Provider, primaryName string, fallback assess.Provider, cfg CircuitBreakerConfig) *AssessFallback {
	cfg.Name = primaryName
	return &AssessFallback{
		primary:     primary,
		primaryName: primaryName,
		fallback:    fallback,
		breaker:     NewCircuitBreaker(cfg),
	}
}

// Assess implements assess.Provider. The primary's result wins when it
// succeeds; any primary failure (including an open breaker) falls through to
// the fallback.
func (f *AssessFallback) Assess(ctx context.Context, req assess.Request) (*assess.Result, error) {
	var result *assess.Result
	err := f.breaker.Execute(func() error {
		r, err := f.primary.Assess(ctx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, ErrCircuitOpen) {
		slog.Debug("assessment primary skipped (circuit open)", "provider", f.primaryName)
	} else {
		slog.Warn("assessment primary failed, using fallback",
			"provider", f.primaryName,
			"err", err)
	}
	return f.fallback.Assess(ctx, req)
}

// PrimaryState exposes the primary's breaker state for health reporting.
func (f *AssessFallback) PrimaryState() State {
	return f.breaker.State()
}
