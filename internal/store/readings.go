package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/readling/readling/pkg/provider/assess"
)

// Reading is one recorded page assessment.
type Reading struct {
	ID         int64                 `json:"id"`
	BookID     int64                 `json:"bookId"`
	PageNumber int                   `json:"pageNumber"`
	Transcript string                `json:"transcript"`
	Scores     assess.Scores         `json:"scores"`
	Results    []assess.WordAnalysis `json:"results"`
	Source     string                `json:"source"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// ProgressSummary is the per-book reading progress rollup.
type ProgressSummary struct {
	BookID       int64     `json:"bookId"`
	Title        string    `json:"title"`
	Readings     int       `json:"readings"`
	AvgAccuracy  float64   `json:"avgAccuracyPct"`
	BestAccuracy float64   `json:"bestAccuracyPct"`
	LastReadAt   time.Time `json:"lastReadAt"`
}

// SaveReading inserts r, assigning r.ID and r.CreatedAt from the database.
func (s *Store) SaveReading(ctx context.Context, r *Reading) error {
	resultsJSON, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Errorf("store: marshal reading results: %w", err)
	}

	const q = `
		INSERT INTO readings
		    (book_id, page_number, transcript, accuracy_pct, fry_hit_pct, phoneme_hit_pct, results, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err = s.db.QueryRow(ctx, q,
		r.BookID, r.PageNumber, r.Transcript,
		r.Scores.AccuracyPct, r.Scores.FryHitPct, r.Scores.PhonemeHitPct,
		resultsJSON, r.Source,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: save reading: %w", err)
	}
	return nil
}

// ListReadings returns all recorded readings for a book, newest first.
func (s *Store) ListReadings(ctx context.Context, bookID int64) ([]Reading, error) {
	const q = `
		SELECT id, book_id, page_number, transcript,
		       accuracy_pct, fry_hit_pct, phoneme_hit_pct, results, source, created_at
		FROM   readings
		WHERE  book_id = $1
		ORDER  BY created_at DESC`

	rows, err := s.db.Query(ctx, q, bookID)
	if err != nil {
		return nil, fmt.Errorf("store: list readings: %w", err)
	}
	return collectReadings(rows)
}

// Progress returns the per-book reading progress rollup across all books
// that have at least one recorded reading, most recently read first.
func (s *Store) Progress(ctx context.Context) ([]ProgressSummary, error) {
	const q = `
		SELECT b.id, b.title,
		       count(r.id),
		       avg(r.accuracy_pct),
		       max(r.accuracy_pct),
		       max(r.created_at)
		FROM   books b
		JOIN   readings r ON r.book_id = b.id
		GROUP  BY b.id, b.title
		ORDER  BY max(r.created_at) DESC`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: progress: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProgressSummary, error) {
		var ps ProgressSummary
		err := row.Scan(&ps.BookID, &ps.Title, &ps.Readings, &ps.AvgAccuracy, &ps.BestAccuracy, &ps.LastReadAt)
		return ps, err
	})
	if err != nil {
		return nil, fmt.Errorf("store: progress: %w", err)
	}
	if summaries == nil {
		summaries = []ProgressSummary{}
	}
	return summaries, nil
}

// collectReadings scans pgx rows into a slice of readings.
func collectReadings(rows pgx.Rows) ([]Reading, error) {
	readings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Reading, error) {
		var (
			r           Reading
			resultsJSON []byte
		)
		if err := row.Scan(
			&r.ID, &r.BookID, &r.PageNumber, &r.Transcript,
			&r.Scores.AccuracyPct, &r.Scores.FryHitPct, &r.Scores.PhonemeHitPct,
			&resultsJSON, &r.Source, &r.CreatedAt,
		); err != nil {
			return Reading{}, err
		}
		if err := json.Unmarshal(resultsJSON, &r.Results); err != nil {
			return Reading{}, fmt.Errorf("unmarshal results: %w", err)
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: scan readings: %w", err)
	}
	if readings == nil {
		readings = []Reading{}
	}
	return readings, nil
}
