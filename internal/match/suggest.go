package match

import (
	"sort"

	"tagmerge/internal/common"
)

// DefaultMinSimilarity is the lowest score a known name needs to be suggested.
const DefaultMinSimilarity = 0.5

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit names from known that look like name, best
// first. Qualified names are also compared by their short form, so "Servce"
// suggests "com.acme.Service".
func Suggest(name string, known []string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	var candidates []scored

	for _, k := range common.Unique(known) {
		if k == name {
			continue
		}

		score := max(Similarity(name, k), Similarity(common.ShortName(name), common.ShortName(k)))
		if score >= DefaultMinSimilarity {
			candidates = append(candidates, scored{name: k, score: score})
		}
	}

	// Sort for determinism: score desc, then name.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}

		return candidates[i].name < candidates[j].name
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for i := 0; i < len(candidates) && i < limit; i++ {
		out = append(out, candidates[i].name)
	}

	return out
}
