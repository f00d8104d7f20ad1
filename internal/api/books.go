package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/readling/readling/internal/observe"
	"github.com/readling/readling/internal/store"
	"github.com/readling/readling/pkg/book"
	"github.com/readling/readling/pkg/provider/story"
)

// createBookRequest is the JSON body for POST /api/books.
type createBookRequest struct {
	ReadingLevel string `json:"readingLevel"`
	Theme        string `json:"theme"`
	NumPages     int    `json:"numPages"`
	Hero         string `json:"hero"`
	Setting      string `json:"setting"`
}

// handleCreateBook generates a storybook, illustrates its pages, persists it,
// and returns the stored book.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Theme == "" {
		writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	ctx, span := observe.StartSpan(r.Context(), "book.generate")
	defer span.End()
	log := observe.Logger(ctx)

	start := time.Now()
	b, err := s.story.Generate(ctx, story.Request{
		ReadingLevel: req.ReadingLevel,
		Theme:        req.Theme,
		NumPages:     req.NumPages,
		Hero:         req.Hero,
		Setting:      req.Setting,
	})
	s.metrics.StoryDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "story")
		log.Error("story generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "story generation failed")
		return
	}

	s.illustratePages(r.Context(), b)

	if err := s.books.CreateBook(ctx, b); err != nil {
		log.Error("store book failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store book")
		return
	}

	s.metrics.BooksGenerated.Add(ctx, 1)
	log.Info("book generated",
		"book_id", b.ID,
		"title", b.Title,
		"pages", len(b.Pages))
	writeJSON(w, http.StatusCreated, b)
}

// illustratePages renders page illustrations concurrently, bounded by the
// configured worker count. Illustration is best effort: a failed page keeps
// an empty image URL and the book is stored anyway.
func (s *Server) illustratePages(ctx context.Context, b *book.Book) {
	if s.art == nil {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.illustrationWorkers)

	for i := range b.Pages {
		p := &b.Pages[i]
		if p.ImagePrompt == "" {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			url, err := s.art.Illustrate(ctx, p.ImagePrompt)
			s.metrics.IllustrationDuration.Record(ctx, time.Since(start).Seconds())
			if err != nil {
				s.metrics.RecordProviderError(ctx, "art")
				observe.Logger(ctx).Warn("page illustration failed",
					"page", p.PageNumber,
					"error", err)
				return nil
			}
			p.ImageURL = url
			return nil
		})
	}
	_ = g.Wait()
}

// handleListBooks serves GET /api/books.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.ListBooks(r.Context())
	if err != nil {
		observe.Logger(r.Context()).Error("list books failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// handleGetBook serves GET /api/books/{id}.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	b, err := s.books.GetBook(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("get book failed", "book_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load book")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleListReadings serves GET /api/readings?book={id}.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.URL.Query().Get("book"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "book query parameter is required")
		return
	}

	readings, err := s.readings.ListReadings(r.Context(), bookID)
	if err != nil {
		observe.Logger(r.Context()).Error("list readings failed", "book_id", bookID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not list readings")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleProgress serves GET /api/progress.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.readings.Progress(r.Context())
	if err != nil {
		observe.Logger(r.Context()).Error("progress rollup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
