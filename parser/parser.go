// Package parser defines the candidate-parser boundary: the LLM-backed step
// that turns raw search results into structured, semantically deduplicated
// recipe candidates.
package parser

import (
	"context"
	"errors"

	"pantryfinder"
	"pantryfinder/pantry"
	"pantryfinder/search"
)

// ErrUnavailable means the parsing model could not be reached or refused the
// request. Terminal for the discovery session, never retried here.
var ErrUnavailable = errors.New("candidate parser unavailable")

// Input is one candidate-parse request. PreviousRecipes is nil on the first
// call of a session, signalling that no diversity filtering is needed; on
// later calls it holds everything accumulated so far so the model can avoid
// semantic repeats.
type Input struct {
	SearchResults   []search.Result       `json:"search_results"`
	Pantry          pantry.Context        `json:"pantry"`
	Preferences     pantry.Preferences    `json:"preference_signals"`
	PreviousRecipes []pantryfinder.Recipe `json:"previous_recipes"`
}

// Output is the structured result of one parse call.
type Output struct {
	Recipes   []pantryfinder.Recipe `json:"recipes"`
	Reasoning map[string]string     `json:"reasoning_per_recipe,omitempty"`
}

// CandidateParser is the boundary contract. Implementations must return only
// recipes that are new relative to Input.PreviousRecipes.
type CandidateParser interface {
	Parse(ctx context.Context, in Input) (Output, error)
}

// Normalize backfills recipe IDs from titles and drops entries that are
// still invalid, so downstream code never sees a recipe without a dedup key.
func Normalize(out Output) Output {
	recipes := make([]pantryfinder.Recipe, 0, len(out.Recipes))
	for _, r := range out.Recipes {
		if r.ID == "" {
			r.ID = pantryfinder.Slug(r.Title)
		}
		if !r.IsValid() {
			continue
		}
		recipes = append(recipes, r)
	}
	out.Recipes = recipes
	return out
}
