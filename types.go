package pantryfinder

import (
	"context"
	"net/http"
	"strings"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// RecipeFinder runs one recipe-discovery session for a household.
type RecipeFinder interface {
	Find(ctx context.Context, householdID string) (FindResult, error)
}

// Recipe is a structured recipe candidate produced by the candidate parser.
// ID is a slug derived from the title and serves as the dedup/match key.
type Recipe struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Time         string   `json:"time,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`

	// Enrichment fields, populated once accumulation is done.
	MatchPercent int               `json:"match_percent,omitempty"`
	MatchScore   int               `json:"match_score,omitempty"`
	Matches      []IngredientMatch `json:"matches,omitempty"`
	Reasoning    string            `json:"ai_reasoning,omitempty"`
}

// IngredientMatch reports whether a single recipe ingredient is on hand.
type IngredientMatch struct {
	Name string `json:"name"`
	Have bool   `json:"have"`
}

// IsValid checks that a parsed recipe carries the minimum required fields.
func (r *Recipe) IsValid() bool {
	return r.ID != "" && r.Title != ""
}

// FindResult is what a completed recipe-discovery session returns.
type FindResult struct {
	Recipes   []Recipe `json:"recipes"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// Slug normalizes a recipe title into its dedup key: lowercased, trimmed,
// with runs of non-alphanumeric characters collapsed to single dashes.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
