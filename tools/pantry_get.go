package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantryfinder/pantry"
)

type PantryGet struct{ loader *pantry.ContextLoader }

func NewPantryGet(loader *pantry.ContextLoader) *PantryGet { return &PantryGet{loader: loader} }

func (t *PantryGet) Name() string  { return "pantry_get" }
func (t *PantryGet) Title() string { return "Get Pantry (with expiring items)" }
func (t *PantryGet) Description() string {
	return "Returns a household's current pantry items plus the subset expiring within the next three days."
}

func (t *PantryGet) InputSchema() *jsonschema.Schema {
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

func (t *PantryGet) OutputSchema() *jsonschema.Schema {
	minQty := 0.0
	itemSchema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":       {Type: "string"},
			"name":     {Type: "string"},
			"quantity": {Type: "number", Minimum: &minQty},
			"category": {Type: "string"},
			"expires":  {Type: "string"},
		},
		Required: []string{"id", "name", "quantity"},
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"pantry": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"items": {
						Type:  "array",
						Items: itemSchema,
					},
					"expiring_soon": {
						Type:  "array",
						Items: itemSchema,
					},
					"categories": {
						Type:  "array",
						Items: &jsonschema.Schema{Type: "string"},
					},
				},
				Required: []string{"items"},
			},
		},
		Required: []string{"pantry"},
	}
}

func (t *PantryGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	householdID, ok := input["household_id"].(string)
	if !ok || householdID == "" {
		return nil, fmt.Errorf("household_id is required")
	}

	snapshot, err := t.loader.Load(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("load pantry: %w", err)
	}

	out := struct {
		Pantry struct {
			Items        []pantry.ContextItem `json:"items"`
			ExpiringSoon []pantry.ContextItem `json:"expiring_soon,omitempty"`
			Categories   []string             `json:"categories,omitempty"`
		} `json:"pantry"`
	}{}

	// Initialize items slice to prevent nil when empty
	out.Pantry.Items = make([]pantry.ContextItem, 0, len(snapshot.Items))
	out.Pantry.Items = append(out.Pantry.Items, snapshot.Items...)
	out.Pantry.ExpiringSoon = snapshot.ExpiringSoon
	out.Pantry.Categories = snapshot.Categories

	// marshal -> map[string]any to keep outputs uniform
	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
