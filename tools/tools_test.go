package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryfinder"
	"pantryfinder/eventstore"
	"pantryfinder/pantry"
)

func seededLoader(t *testing.T) *pantry.ContextLoader {
	t.Helper()
	store := eventstore.NewMemoryStore()
	journal := pantry.NewJournal(store)
	ctx := context.Background()

	require.NoError(t, journal.AppendItemAdded(ctx, "h1", pantry.Item{
		ID: uuid.New(), HouseholdID: "h1", Name: "milk", Quantity: 1,
		Category: "dairy", Expires: "2025-03-11",
	}))
	require.NoError(t, journal.AppendItemAdded(ctx, "h1", pantry.Item{
		ID: uuid.New(), HouseholdID: "h1", Name: "rice", Quantity: 2, Category: "grains",
	}))
	require.NoError(t, journal.AppendShoppingAdded(ctx, "h1", pantry.ShoppingItem{
		ID: uuid.New(), HouseholdID: "h1", Name: "butter", Quantity: 1,
	}))

	fixedNow := func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return pantry.NewContextLoader(store, fixedNow)
}

func TestPantryGet_Run(t *testing.T) {
	tool := NewPantryGet(seededLoader(t))

	result, err := tool.Run(context.Background(), map[string]any{"household_id": "h1"})
	require.NoError(t, err)

	p, ok := result["pantry"].(map[string]any)
	require.True(t, ok)

	items, ok := p["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "milk", first["name"])
	assert.Equal(t, 1.0, first["quantity"])
	assert.Equal(t, "dairy", first["category"])

	// Milk expires the day after the fixed clock, so it is expiring soon.
	expiring, ok := p["expiring_soon"].([]any)
	require.True(t, ok)
	require.Len(t, expiring, 1)
	assert.Equal(t, "milk", expiring[0].(map[string]any)["name"])

	assert.Equal(t, []any{"dairy", "grains"}, p["categories"])
}

func TestPantryGet_EmptyHousehold(t *testing.T) {
	loader := pantry.NewContextLoader(eventstore.NewMemoryStore(), nil)
	tool := NewPantryGet(loader)

	result, err := tool.Run(context.Background(), map[string]any{"household_id": "nobody"})
	require.NoError(t, err)

	p := result["pantry"].(map[string]any)
	items, ok := p["items"].([]any)
	require.True(t, ok, "items must be present even when empty")
	assert.Empty(t, items)
}

func TestPantryGet_MissingHouseholdID(t *testing.T) {
	tool := NewPantryGet(seededLoader(t))

	for _, input := range []map[string]any{
		{},
		{"household_id": ""},
		{"household_id": 42},
	} {
		_, err := tool.Run(context.Background(), input)
		assert.Error(t, err)
	}
}

func TestShoppingGet_Run(t *testing.T) {
	tool := NewShoppingGet(seededLoader(t))

	result, err := tool.Run(context.Background(), map[string]any{"household_id": "h1"})
	require.NoError(t, err)

	s := result["shopping"].(map[string]any)
	items, ok := s["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	line := items[0].(map[string]any)
	assert.Equal(t, "butter", line["name"])
	assert.Equal(t, false, line["checked"])
}

type stubFinder struct {
	result pantryfinder.FindResult
	err    error

	householdID string
}

func (s *stubFinder) Find(ctx context.Context, householdID string) (pantryfinder.FindResult, error) {
	s.householdID = householdID
	return s.result, s.err
}

func TestRecipeSearch_Run(t *testing.T) {
	finder := &stubFinder{result: pantryfinder.FindResult{
		Recipes: []pantryfinder.Recipe{
			{ID: "fried-rice", Title: "Fried Rice", MatchPercent: 100, Reasoning: "uses rice"},
		},
		Reasoning: "found 1 recipes in 1 attempts (satisfied)",
	}}
	tool := NewRecipeSearch(finder)

	result, err := tool.Run(context.Background(), map[string]any{"household_id": "h1"})
	require.NoError(t, err)
	assert.Equal(t, "h1", finder.householdID)

	recipes, ok := result["recipes"].([]any)
	require.True(t, ok)
	require.Len(t, recipes, 1)
	assert.Equal(t, "fried-rice", recipes[0].(map[string]any)["id"])
	assert.Equal(t, 100.0, recipes[0].(map[string]any)["match_percent"])
}

func TestRecipeSearch_EmptyResultStaysAnArray(t *testing.T) {
	tool := NewRecipeSearch(&stubFinder{})

	result, err := tool.Run(context.Background(), map[string]any{"household_id": "h1"})
	require.NoError(t, err)

	recipes, ok := result["recipes"].([]any)
	require.True(t, ok, "recipes must serialize as [] rather than null")
	assert.Empty(t, recipes)
}

func TestRecipeSearch_FinderError(t *testing.T) {
	tool := NewRecipeSearch(&stubFinder{err: errors.New("search provider unavailable")})

	_, err := tool.Run(context.Background(), map[string]any{"household_id": "h1"})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	loader := pantry.NewContextLoader(eventstore.NewMemoryStore(), nil)
	registry, err := NewRegistry(loader, &stubFinder{})
	require.NoError(t, err)

	assert.Len(t, registry.GetTools(), 3)

	for _, name := range []string{"pantry_get", "shopping_get", "recipe_search"} {
		tool, err := registry.GetTool(name)
		require.NoError(t, err)
		assert.Equal(t, name, tool.Name())
	}

	_, err = registry.GetTool("nope")
	assert.Error(t, err)
}

func TestToolMetadata(t *testing.T) {
	loader := pantry.NewContextLoader(eventstore.NewMemoryStore(), nil)
	registry, err := NewRegistry(loader, &stubFinder{})
	require.NoError(t, err)

	for _, tool := range registry.GetTools() {
		assert.NotEmpty(t, tool.Title())
		assert.NotEmpty(t, tool.Description())

		in := tool.InputSchema()
		require.NotNil(t, in)
		assert.Equal(t, "object", in.Type)
		assert.Contains(t, in.Properties, "household_id")
		assert.Contains(t, in.Required, "household_id")

		out := tool.OutputSchema()
		require.NotNil(t, out)
		assert.Equal(t, "object", out.Type)
	}
}
