package align_test

import (
	"math"
	"testing"

	"github.com/readling/readling/internal/align"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1},
		{"left empty", "", "zap", 0},
		{"right empty", "zap", "", 0},
		{"identical", "pirates", "pirates", 1},
		{"one substitution over four", "past", "pass", 0.75},
		{"completely different", "a", "z", 0},
		{"insertion", "cat", "cart", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := align.Similarity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_ReflexiveAndSymmetric(t *testing.T) {
	t.Parallel()

	words := []string{"zip", "zap", "space", "pirates", "extraordinary"}
	for _, w := range words {
		if got := align.Similarity(w, w); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", w, w, got)
		}
	}

	pairs := [][2]string{{"past", "pass"}, {"zip", "zap"}, {"space", "pace"}}
	for _, p := range pairs {
		ab := align.Similarity(p[0], p[1])
		ba := align.Similarity(p[1], p[0])
		if !almostEqual(ab, ba) {
			t.Errorf("Similarity(%q, %q) = %v but Similarity(%q, %q) = %v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}
