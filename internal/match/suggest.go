package match

import (
	"cmp"
	"slices"
)

const (
	// DefaultMaxSuggestions bounds the result of Suggest.
	DefaultMaxSuggestions = 3
	// minSimilarity filters out candidates that merely share a letter or two.
	minSimilarity = 0.5
)

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit candidates most similar to name, best first.
// Ties keep alphabetical order. An exact match (after normalization) is
// returned alone.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}

	var ranked []scored

	for _, c := range candidates {
		s := Similarity(name, c)
		if s == 1.0 {
			return []string{c}
		}

		if s >= minSimilarity {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		return cmp.Or(cmp.Compare(b.score, a.score), cmp.Compare(a.name, b.name))
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked[:min(limit, len(ranked))] {
		out = append(out, r.name)
	}

	return out
}
