package pantry

import (
	"math"
	"sort"
	"strings"

	"pantryfinder"
)

// EnrichRecipes cross-references each recipe's ingredient list against the
// pantry and sorts the result by match percentage, best first. Matching is
// exact on normalized (lowercased, trimmed) names; no fuzzy matching. The
// input slice is not mutated, so enrichment is idempotent.
func EnrichRecipes(recipes []pantryfinder.Recipe, items []Item, reasoning map[string]string) []pantryfinder.Recipe {
	have := make(map[string]bool, len(items))
	for _, item := range items {
		have[normalizeName(item.Name)] = true
	}

	out := make([]pantryfinder.Recipe, len(recipes))
	copy(out, recipes)

	for i := range out {
		matches := make([]pantryfinder.IngredientMatch, 0, len(out[i].Ingredients))
		haveCount := 0
		for _, ing := range out[i].Ingredients {
			ok := have[normalizeName(ing)]
			if ok {
				haveCount++
			}
			matches = append(matches, pantryfinder.IngredientMatch{Name: ing, Have: ok})
		}

		out[i].Matches = matches
		out[i].MatchScore = haveCount
		if total := len(out[i].Ingredients); total > 0 {
			out[i].MatchPercent = int(math.Round(100 * float64(haveCount) / float64(total)))
		} else {
			out[i].MatchPercent = 0
		}

		if why, ok := reasoning[out[i].ID]; ok {
			out[i].Reasoning = why
		}
	}

	// Stable: equal percentages keep their accumulated order.
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].MatchPercent > out[b].MatchPercent
	})

	return out
}

// EnrichFromContext runs enrichment against a serialized pantry snapshot;
// only item names matter for matching.
func EnrichFromContext(recipes []pantryfinder.Recipe, c Context, reasoning map[string]string) []pantryfinder.Recipe {
	items := make([]Item, 0, len(c.Items))
	for _, ci := range c.Items {
		items = append(items, Item{Name: ci.Name})
	}
	return EnrichRecipes(recipes, items, reasoning)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
