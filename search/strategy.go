package search

import "math/rand"

// StrategyKind identifies which query-diversification strategy an attempt
// uses. The rotation (basic, cuisine, context) exists to avoid near-duplicate
// results across repeated searches: a single fixed query tends to return the
// same top results every time.
type StrategyKind int

const (
	KindBasic StrategyKind = iota
	KindCuisine
	KindContext
)

func (k StrategyKind) String() string {
	switch k {
	case KindCuisine:
		return "cuisine"
	case KindContext:
		return "context"
	default:
		return "basic"
	}
}

// FreshnessPastMonth asks the search API for results from roughly the past
// month.
const FreshnessPastMonth = "pm"

// Strategy is a chosen query template plus any request-level filters.
type Strategy struct {
	Kind      StrategyKind
	Template  string // applied to the joined ingredient list via Sprintf
	Freshness string // empty unless a recency filter applies
}

var (
	basicTemplates = []string{
		"recipes with %s",
		"easy recipes using %s",
		"what to cook with %s",
		"best recipes featuring %s",
	}

	cuisineKeywords = []string{
		"italian", "mexican", "thai", "indian",
		"mediterranean", "japanese", "french",
	}

	contextKeywords = []string{
		"quick weeknight dinner",
		"one pot meal",
		"slow cooker",
		"sheet pan dinner",
		"30 minute meal",
	}
)

// fallbackTemplate is used verbatim (no randomization) once the rotation is
// exhausted. Intentional degradation, not an error.
const fallbackTemplate = "recipes with %s"

// SelectStrategy maps a zero-based attempt counter to a strategy. Attempts
// 0, 1 and 2 are deterministic in kind (basic, cuisine, context); the
// template or keyword within that kind is drawn from rng. Attempts >= 3 fall
// back to basic with the fixed template. The rand source is injected so
// selection is reproducible in tests.
func SelectStrategy(iteration int, rng *rand.Rand) Strategy {
	switch iteration {
	case 0:
		return Strategy{
			Kind:     KindBasic,
			Template: basicTemplates[rng.Intn(len(basicTemplates))],
		}
	case 1:
		cuisine := cuisineKeywords[rng.Intn(len(cuisineKeywords))]
		return Strategy{
			Kind:     KindCuisine,
			Template: cuisine + " recipes with %s",
		}
	case 2:
		context := contextKeywords[rng.Intn(len(contextKeywords))]
		return Strategy{
			Kind:      KindContext,
			Template:  context + " recipes with %s",
			Freshness: FreshnessPastMonth,
		}
	default:
		return Strategy{Kind: KindBasic, Template: fallbackTemplate}
	}
}
