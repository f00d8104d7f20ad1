package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/readling/readling/pkg/book"
)

// BookSummary is a lightweight listing row for a stored book.
type BookSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	ReadingLevel string    `json:"readingLevel"`
	Theme        string    `json:"theme"`
	PageCount    int       `json:"pageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateBook inserts b and its pages, assigning b.ID from the database.
func (s *Store) CreateBook(ctx context.Context, b *book.Book) error {
	const insertBook = `
		INSERT INTO books (title, reading_level, theme)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := s.db.QueryRow(ctx, insertBook, b.Title, b.ReadingLevel, b.Theme).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("store: create book: %w", err)
	}

	const insertPage = `
		INSERT INTO pages (book_id, page_number, words, image_prompt, image_url)
		VALUES ($1, $2, $3, $4, $5)`

	for _, p := range b.Pages {
		wordsJSON, err := json.Marshal(p.Words)
		if err != nil {
			return fmt.Errorf("store: marshal page %d words: %w", p.PageNumber, err)
		}
		if _, err := s.db.Exec(ctx, insertPage,
			b.ID, p.PageNumber, wordsJSON, p.ImagePrompt, p.ImageURL,
		); err != nil {
			return fmt.Errorf("store: create page %d: %w", p.PageNumber, err)
		}
	}
	return nil
}

// GetBook returns the book with the given id including all of its pages,
// ordered by page number. Returns [ErrNotFound] when no such book exists.
func (s *Store) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	const q = `
		SELECT id, title, reading_level, theme
		FROM   books
		WHERE  id = $1`

	b := &book.Book{}
	err := s.db.QueryRow(ctx, q, id).Scan(&b.ID, &b.Title, &b.ReadingLevel, &b.Theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("store: get book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get book %d: %w", id, err)
	}

	const pq = `
		SELECT page_number, words, image_prompt, image_url
		FROM   pages
		WHERE  book_id = $1
		ORDER  BY page_number`

	rows, err := s.db.Query(ctx, pq, id)
	if err != nil {
		return nil, fmt.Errorf("store: get book %d pages: %w", id, err)
	}
	pages, err := collectPages(rows)
	if err != nil {
		return nil, fmt.Errorf("store: get book %d pages: %w", id, err)
	}
	b.Pages = pages
	return b, nil
}

// ListBooks returns summaries of all stored books, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]BookSummary, error) {
	const q = `
		SELECT b.id, b.title, b.reading_level, b.theme,
		       (SELECT count(*) FROM pages p WHERE p.book_id = b.id),
		       b.created_at
		FROM   books b
		ORDER  BY b.created_at DESC`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (BookSummary, error) {
		var bs BookSummary
		err := row.Scan(&bs.ID, &bs.Title, &bs.ReadingLevel, &bs.Theme, &bs.PageCount, &bs.CreatedAt)
		return bs, err
	})
	if err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}
	if summaries == nil {
		summaries = []BookSummary{}
	}
	return summaries, nil
}

// SetPageImage records the rendered illustration URL for a page. Used by the
// background illustration workers once a page image is ready.
func (s *Store) SetPageImage(ctx context.Context, bookID int64, pageNumber int, url string) error {
	const q = `
		UPDATE pages
		SET    image_url = $3
		WHERE  book_id = $1 AND page_number = $2`

	tag, err := s.db.Exec(ctx, q, bookID, pageNumber, url)
	if err != nil {
		return fmt.Errorf("store: set page image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store: set page image: book %d page %d: %w", bookID, pageNumber, ErrNotFound)
	}
	return nil
}

// collectPages scans pgx rows into a slice of book pages.
func collectPages(rows pgx.Rows) ([]book.Page, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (book.Page, error) {
		var (
			p         book.Page
			wordsJSON []byte
		)
		if err := row.Scan(&p.PageNumber, &wordsJSON, &p.ImagePrompt, &p.ImageURL); err != nil {
			return book.Page{}, err
		}
		if err := json.Unmarshal(wordsJSON, &p.Words); err != nil {
			return book.Page{}, fmt.Errorf("unmarshal words: %w", err)
		}
		return p, nil
	})
}
