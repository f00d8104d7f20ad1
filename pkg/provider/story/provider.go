// Package story defines the Provider interface for storybook generation
// backends.
//
// A story provider turns a reading request (level, theme, length) into a
// structured storybook document: a title and ordered pages, each carrying its
// expected word list with phoneme annotations and an illustration prompt.
// The reading aligner derives its reference sequence from the word lists, so
// providers must return every page word individually and in order.
package story

import (
	"context"

	"github.com/readling/readling/pkg/book"
)

// Request describes the storybook to generate.
type Request struct {
	// ReadingLevel is the target level (e.g., "kindergarten", "grade-2").
	ReadingLevel string

	// Theme is the story theme (e.g., "space pirates"). Optional.
	Theme string

	// NumPages is the number of pages to generate. Providers may treat zero
	// as a sensible default.
	NumPages int

	// Hero optionally names the protagonist.
	Hero string

	// Setting optionally names where the story takes place.
	Setting string
}

// Provider is the abstraction over any storybook generation backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Generate produces a complete storybook for req. The returned book has
	// no ID (assignment is the store's job) and no page image URLs
	// (illustration is the art provider's job).
	Generate(ctx context.Context, req Request) (*book.Book, error)
}
