// Package app wires all Readling subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject doubles via functional options (WithBookStore,
// WithReadingStore, etc.). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/readling/readling/internal/api"
	"github.com/readling/readling/internal/config"
	"github.com/readling/readling/internal/health"
	"github.com/readling/readling/internal/resilience"
	"github.com/readling/readling/internal/store"
	"github.com/readling/readling/pkg/provider/art"
	"github.com/readling/readling/pkg/provider/assess"
	"github.com/readling/readling/pkg/provider/assess/local"
	"github.com/readling/readling/pkg/provider/story"
)

// shutdownTimeout bounds the HTTP server drain during Run teardown.
const shutdownTimeout = 10 * time.Second

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go from the config.
type Providers struct {
	// Story generates storybooks. Required.
	Story story.Provider

	// Assess is the external pronunciation assessor. Nil means assessment
	// runs purely on the local scorer.
	Assess assess.Provider

	// Art renders page illustrations. Nil disables illustration.
	Art art.Provider
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	books    store.BookStore
	readings store.ReadingStore
	db       *store.Store
	assessor assess.Provider
	fallback *resilience.AssessFallback
	server   *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithBookStore injects a book store instead of connecting to PostgreSQL.
func WithBookStore(s store.BookStore) Option {
	return func(a *App) { a.books = s }
}

// WithReadingStore injects a reading store instead of connecting to PostgreSQL.
func WithReadingStore(s store.ReadingStore) Option {
	return func(a *App) { a.readings = s }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go. Use Option functions to inject test doubles.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Story == nil {
		return nil, fmt.Errorf("app: a story provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}

	a.initAssessor()
	a.initServer()

	return a, nil
}

// initStore connects to PostgreSQL unless both stores were injected.
func (a *App) initStore(ctx context.Context) error {
	if a.books != nil && a.readings != nil {
		return nil // both injected
	}

	dsn := a.cfg.Storage.PostgresDSN
	if dsn == "" {
		return fmt.Errorf("storage.postgres_dsn is required when stores are not injected")
	}

	db, err := store.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	a.db = db

	if a.books == nil {
		a.books = db
	}
	if a.readings == nil {
		a.readings = db
	}

	a.closers = append(a.closers, func() error {
		db.Close()
		return nil
	})
	return nil
}

// initAssessor builds the effective assessment provider: the local scorer,
// fronted by the external assessor behind a circuit breaker when one is
// configured.
func (a *App) initAssessor() {
	scorer := local.New()
	if a.providers.Assess == nil {
		a.assessor = scorer
		slog.Info("assessment running on local scorer only")
		return
	}

	a.fallback = resilience.NewAssessFallback(
		a.providers.Assess,
		a.cfg.Providers.Assess.Name,
		scorer,
		resilience.CircuitBreakerConfig{},
	)
	a.assessor = a.fallback
	slog.Info("assessment using external provider with local fallback",
		"provider", a.cfg.Providers.Assess.Name)
}

// initServer builds the HTTP server with all routes mounted.
func (a *App) initServer() {
	checkers := []health.Checker{
		{Name: "database", Check: a.pingStore},
	}
	if a.fallback != nil {
		checkers = append(checkers, health.Checker{Name: "assess", Check: a.checkAssessBreaker})
	}

	srv := api.New(a.books, a.readings, a.providers.Story, a.assessor,
		api.WithArtProvider(a.providers.Art),
		api.WithHealth(health.New(checkers...)),
		api.WithLiveThreshold(a.cfg.Reading.LiveMatchThreshold),
		api.WithRestartBudget(a.cfg.Reading.RestartBudget),
		api.WithIllustrationWorkers(a.cfg.Reading.IllustrationWorkers),
	)

	a.server = &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// pingStore is the database readiness check.
func (a *App) pingStore(ctx context.Context) error {
	if a.db == nil {
		return nil // injected store, nothing to ping
	}
	return a.db.Ping(ctx)
}

// checkAssessBreaker reports the external assessor's breaker state. An open
// breaker is not a readiness failure (the local fallback still serves), but
// the state shows up in the readiness response.
func (a *App) checkAssessBreaker(context.Context) error {
	if st := a.fallback.PrimaryState(); st == resilience.StateOpen {
		return fmt.Errorf("external assessor circuit open, serving local fallback")
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains connections and
// returns. A server failure (e.g. a busy listen address) is returned
// immediately.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", a.cfg.Server.ListenAddr)
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(drainCtx); err != nil {
			slog.Warn("server drain error", "err", err)
		}
		return ctx.Err()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
