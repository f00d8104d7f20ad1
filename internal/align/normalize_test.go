package align_test

import (
	"testing"

	"github.com/readling/readling/internal/align"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Zip", "zip"},
		{"strips trailing punctuation", "pirates.", "pirates"},
		{"strips mixed punctuation", `"Hello, world!"`, "hello world"},
		{"collapses whitespace", "zip   and\tzap", "zip and zap"},
		{"trims", "  space  ", "space"},
		{"curly apostrophe", "don’t", "dont"},
		{"only punctuation", "?!...", ""},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := align.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "Zip", "pirates.", "  The   QUICK, brown fox!  ", "don’t stop",
		"already normalized text",
	}
	for _, in := range inputs {
		once := align.Normalize(in)
		twice := align.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
