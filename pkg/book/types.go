// Package book defines the storybook document model shared by the story
// generation provider, the persistence layer, and the reading API.
package book

import "strings"

// Word is a single expected word on a page, together with the ARPABET-style
// phoneme tokens the story provider supplied for it. Phonemes are opaque to
// this system — they are produced and consumed by external providers, never
// computed locally.
type Word struct {
	Text     string   `json:"text"`
	Phonemes []string `json:"phonemes,omitempty"`
}

// Page is one illustrated page of a storybook. The reading aligner's
// reference sequence for the page is the Text of each Word, in order.
type Page struct {
	PageNumber  int    `json:"pageNumber"`
	Words       []Word `json:"words"`
	ImagePrompt string `json:"imagePrompt,omitempty"`

	// ImageURL is filled in once the illustration provider has rendered
	// ImagePrompt. Empty until then.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Text returns the page's expected text as a single spaced string.
func (p Page) Text() string {
	return strings.Join(p.ReferenceWords(), " ")
}

// ReferenceWords returns the ordered expected word list for the page.
func (p Page) ReferenceWords() []string {
	words := make([]string, len(p.Words))
	for i, w := range p.Words {
		words[i] = w.Text
	}
	return words
}

// Book is a generated storybook.
type Book struct {
	// ID is assigned by the store on save; zero until then.
	ID int64 `json:"id,omitempty"`

	Title        string `json:"title"`
	ReadingLevel string `json:"readingLevel"`
	Theme        string `json:"theme,omitempty"`
	Pages        []Page `json:"pages"`
}
