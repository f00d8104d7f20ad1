// Package art defines the Provider interface for page illustration backends.
//
// Each storybook page carries an illustration prompt produced by the story
// provider; an art provider renders that prompt into an image and returns a
// URL the reading UI can display.
package art

import "context"

// Provider is the abstraction over any image generation backend.
//
// Implementations must be safe for concurrent use — pages of a book are
// illustrated concurrently.
type Provider interface {
	// Illustrate renders prompt into an image and returns its URL.
	Illustrate(ctx context.Context, prompt string) (string, error)
}
