// Package api provides the HTTP and websocket transport for Readling: REST
// endpoints for storybook generation and retrieval, the live reading-session
// websocket, and the health and metrics endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readling/readling/internal/align"
	"github.com/readling/readling/internal/health"
	"github.com/readling/readling/internal/observe"
	"github.com/readling/readling/internal/store"
	"github.com/readling/readling/pkg/provider/art"
	"github.com/readling/readling/pkg/provider/assess"
	"github.com/readling/readling/pkg/provider/story"
)

// defaultIllustrationWorkers bounds concurrent page illustration per book.
const defaultIllustrationWorkers = 4

// Option is a functional option for configuring the [Server].
type Option func(*Server)

// WithArtProvider enables page illustration through the given provider.
// Without it, books are created with empty image URLs.
func WithArtProvider(p art.Provider) Option {
	return func(s *Server) {
		s.art = p
	}
}

// WithHealth registers the given health handler's routes on the server mux.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics overrides the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLiveThreshold overrides the fuzzy-match threshold for live highlighting
// in reading sessions. Default: [align.LiveMatchThreshold].
func WithLiveThreshold(threshold float64) Option {
	return func(s *Server) {
		if threshold > 0 {
			s.liveThreshold = threshold
		}
	}
}

// WithRestartBudget overrides the consecutive engine-termination budget for
// reading sessions. Default: [align.DefaultRestartBudget].
func WithRestartBudget(budget int) Option {
	return func(s *Server) {
		if budget > 0 {
			s.restartBudget = budget
		}
	}
}

// WithIllustrationWorkers bounds how many page illustrations are generated
// concurrently per book. Default: 4.
func WithIllustrationWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.illustrationWorkers = n
		}
	}
}

// Server is the Readling HTTP/websocket transport. Construct via [New] and
// mount [Server.Handler].
type Server struct {
	books    store.BookStore
	readings store.ReadingStore
	story    story.Provider
	art      art.Provider
	assessor assess.Provider

	health  *health.Handler
	metrics *observe.Metrics

	liveThreshold       float64
	restartBudget       int
	illustrationWorkers int
}

// New creates a [Server]. The story and assess providers and both stores are
// required; illustration is optional via [WithArtProvider].
func New(books store.BookStore, readings store.ReadingStore, storyProv story.Provider, assessor assess.Provider, opts ...Option) *Server {
	s := &Server{
		books:               books,
		readings:            readings,
		story:               storyProv,
		assessor:            assessor,
		liveThreshold:       align.LiveMatchThreshold,
		restartBudget:       align.DefaultRestartBudget,
		illustrationWorkers: defaultIllustrationWorkers,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the root handler with all routes mounted. REST, health, and
// metrics routes are wrapped in the observability middleware; the websocket
// route is mounted directly because the upgrade needs the raw connection.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/books", s.handleCreateBook)
	mux.HandleFunc("GET /api/books", s.handleListBooks)
	mux.HandleFunc("GET /api/books/{id}", s.handleGetBook)
	mux.HandleFunc("GET /api/readings", s.handleListReadings)
	mux.HandleFunc("GET /api/progress", s.handleProgress)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}

	root := http.NewServeMux()
	root.HandleFunc("GET /ws/read", s.handleReadSession)
	root.Handle("/", observe.Middleware(s.metrics)(mux))
	return root
}

// errorResponse is the JSON body for error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError sends a JSON error reply.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
