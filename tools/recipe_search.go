package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantryfinder"
)

type RecipeSearch struct{ finder pantryfinder.RecipeFinder }

func NewRecipeSearch(finder pantryfinder.RecipeFinder) *RecipeSearch {
	return &RecipeSearch{finder: finder}
}

func (t *RecipeSearch) Name() string  { return "recipe_search" }
func (t *RecipeSearch) Title() string { return "Search Recipes" }
func (t *RecipeSearch) Description() string {
	return "Runs a recipe-discovery session against the household's pantry and returns ranked recipe suggestions with match percentages."
}

func (t *RecipeSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"household_id": {
				Type: "string",
			},
		},
		Required: []string{"household_id"},
	}
}

func (t *RecipeSearch) OutputSchema() *jsonschema.Schema {
	minPct := 0.0
	maxPct := 100.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"id":            {Type: "string"},
						"title":         {Type: "string"},
						"url":           {Type: "string"},
						"ingredients":   {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						"match_percent": {Type: "integer", Minimum: &minPct, Maximum: &maxPct},
						"ai_reasoning":  {Type: "string"},
					},
					Required: []string{"id", "title"},
				},
			},
			"reasoning": {Type: "string"},
		},
		Required: []string{"recipes"},
	}
}

func (t *RecipeSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	householdID, ok := input["household_id"].(string)
	if !ok || householdID == "" {
		return nil, fmt.Errorf("household_id is required")
	}

	result, err := t.finder.Find(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("recipe search: %w", err)
	}

	if result.Recipes == nil {
		result.Recipes = make([]pantryfinder.Recipe, 0)
	}

	b, _ := json.Marshal(result)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
