// Package store provides the PostgreSQL persistence layer for Readling:
// generated storybooks, their pages, and recorded reading assessments.
//
// All structured sub-fields (page words, per-word assessment results) are
// serialised as JSONB. The schema is created idempotently by [Store.Migrate]
// and is safe to apply on every application start.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readling/readling/pkg/book"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// BookStore persists generated storybooks.
type BookStore interface {
	CreateBook(ctx context.Context, b *book.Book) error
	GetBook(ctx context.Context, id int64) (*book.Book, error)
	ListBooks(ctx context.Context) ([]BookSummary, error)
	SetPageImage(ctx context.Context, bookID int64, pageNumber int, url string) error
}

// ReadingStore persists reading assessments and progress rollups.
type ReadingStore interface {
	SaveReading(ctx context.Context, r *Reading) error
	ListReadings(ctx context.Context, bookID int64) ([]Reading, error)
	Progress(ctx context.Context) ([]ProgressSummary, error)
}

// Compile-time interface checks.
var (
	_ BookStore    = (*Store)(nil)
	_ ReadingStore = (*Store)(nil)
)

// Schema is the SQL DDL for all Readling tables. Execute it via
// [Store.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS books (
    id            BIGSERIAL    PRIMARY KEY,
    title         TEXT         NOT NULL,
    reading_level TEXT         NOT NULL DEFAULT '',
    theme         TEXT         NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pages (
    book_id      BIGINT  NOT NULL REFERENCES books (id) ON DELETE CASCADE,
    page_number  INT     NOT NULL,
    words        JSONB   NOT NULL DEFAULT '[]',
    image_prompt TEXT    NOT NULL DEFAULT '',
    image_url    TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (book_id, page_number)
);

CREATE TABLE IF NOT EXISTS readings (
    id              BIGSERIAL    PRIMARY KEY,
    book_id         BIGINT       NOT NULL REFERENCES books (id) ON DELETE CASCADE,
    page_number     INT          NOT NULL,
    transcript      TEXT         NOT NULL DEFAULT '',
    accuracy_pct    DOUBLE PRECISION NOT NULL DEFAULT 0,
    fry_hit_pct     DOUBLE PRECISION NOT NULL DEFAULT 0,
    phoneme_hit_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
    results         JSONB        NOT NULL DEFAULT '[]',
    source          TEXT         NOT NULL DEFAULT 'local',
    created_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_readings_book ON readings (book_id, page_number);
CREATE INDEX IF NOT EXISTS idx_readings_created ON readings (created_at);
`

// DB is the database interface used by [Store]. Both *pgxpool.Pool and
// *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the PostgreSQL-backed persistence layer. All methods are safe for
// concurrent use.
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

// New creates a [Store] on top of an existing database connection or pool.
// The caller is responsible for calling [Store.Migrate] before issuing
// queries.
func New(db DB) *Store {
	return &Store{db: db}
}

// Connect establishes a connection pool to the PostgreSQL database at dsn,
// verifies connectivity, and runs [Store.Migrate]. Close the returned Store
// with [Store.Close] when done.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate executes the [Schema] DDL, creating all tables and indexes if they
// do not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Ping verifies database connectivity. Used by the readiness probe. When the
// Store was built from a bare [DB] (tests), Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying pool, if any.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
