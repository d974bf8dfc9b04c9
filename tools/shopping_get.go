package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantryfinder/pantry"
)

type ShoppingGet struct{ loader *pantry.ContextLoader }

func NewShoppingGet(loader *pantry.ContextLoader) *ShoppingGet {
	return &ShoppingGet{loader: loader}
}

func (t *ShoppingGet) Name() string  { return "shopping_get" }
func (t *ShoppingGet) Title() string { return "Get Shopping List" }
func (t *ShoppingGet) Description() string {
	return "Returns a household's shopping list, including which items are already checked off."
}

func (t *ShoppingGet) InputSchema() *jsonschema.Schema {
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

func (t *ShoppingGet) OutputSchema() *jsonschema.Schema {
	minQty := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"shopping": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"items": {
						Type: "array",
						Items: &jsonschema.Schema{
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"id":       {Type: "string"},
								"name":     {Type: "string"},
								"quantity": {Type: "number", Minimum: &minQty},
								"checked":  {Type: "boolean"},
							},
							Required: []string{"id", "name", "quantity", "checked"},
						},
					},
				},
				Required: []string{"items"},
			},
		},
		Required: []string{"shopping"},
	}
}

func (t *ShoppingGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	householdID, ok := input["household_id"].(string)
	if !ok || householdID == "" {
		return nil, fmt.Errorf("household_id is required")
	}

	snapshot, err := t.loader.Load(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("load shopping list: %w", err)
	}

	out := struct {
		Shopping struct {
			Items []pantry.ShoppingLine `json:"items"`
		} `json:"shopping"`
	}{}

	out.Shopping.Items = make([]pantry.ShoppingLine, 0, len(snapshot.ShoppingItems))
	out.Shopping.Items = append(out.Shopping.Items, snapshot.ShoppingItems...)

	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
