package search

import (
	"fmt"
	"strings"
)

// maxQueryIngredients caps how many pantry ingredients go into one query;
// past that point extra terms narrow results instead of improving them.
const maxQueryIngredients = 5

// exclusions is the fixed site blacklist appended to every query for result
// quality control.
var exclusions = []string{
	"-site:pinterest.com",
	"-site:quora.com",
	"-site:facebook.com",
}

// BuildQuery renders a search query from a strategy and an ordered
// ingredient list: at most the first five ingredients, joined with spaces,
// run through the strategy template, with the exclusion clause appended.
func BuildQuery(strategy Strategy, ingredients []string) string {
	if len(ingredients) > maxQueryIngredients {
		ingredients = ingredients[:maxQueryIngredients]
	}

	query := fmt.Sprintf(strategy.Template, strings.Join(ingredients, " "))
	return query + " " + strings.Join(exclusions, " ")
}
