package finder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryfinder"
	"pantryfinder/eventstore"
	"pantryfinder/pantry"
	"pantryfinder/parser"
	"pantryfinder/parser/mock"
	"pantryfinder/search"
)

// mockSearchClient scripts the search boundary.
type mockSearchClient struct {
	err      error
	failOn   int // 1-based call number to fail on; 0 means never
	requests []search.Request
}

func (m *mockSearchClient) Search(ctx context.Context, req search.Request) (search.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil && (m.failOn == 0 || len(m.requests) == m.failOn) {
		return search.Response{}, m.err
	}
	return search.Response{
		Results: []search.Result{
			{Title: "Result A", Description: "desc", URL: "https://example.com/a"},
			{Title: "Result B", Description: "desc", URL: "https://example.com/b"},
		},
		OriginalQuery: req.Query,
	}, nil
}

func newTestJournal(t *testing.T) (*pantry.Journal, *eventstore.MemoryStore) {
	t.Helper()
	store := eventstore.NewMemoryStore()
	journal := pantry.NewJournal(store)

	require.NoError(t, journal.AppendItemAdded(context.Background(), "h1", pantry.Item{
		ID: uuid.New(), HouseholdID: "h1", Name: "milk", Quantity: 1, Category: "dairy",
	}))
	require.NoError(t, journal.AppendItemAdded(context.Background(), "h1", pantry.Item{
		ID: uuid.New(), HouseholdID: "h1", Name: "eggs", Quantity: 6, Category: "dairy",
	}))
	return journal, store
}

func newFinder(t *testing.T, sc searchClient, cp parser.CandidateParser) (*Finder, *eventstore.MemoryStore) {
	t.Helper()
	journal, store := newTestJournal(t)
	return New(Config{
		Search:  sc,
		Parser:  cp,
		Loader:  pantry.NewContextLoader(store, nil),
		Journal: journal,
		Rand:    rand.New(rand.NewSource(1)),
	}), store
}

func batch(prefix string, n int) parser.Output {
	out := parser.Output{Reasoning: map[string]string{}}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		out.Recipes = append(out.Recipes, pantryfinder.Recipe{
			ID: id, Title: id, Ingredients: []string{"milk"},
		})
		out.Reasoning[id] = "uses milk"
	}
	return out
}

func TestFinder_SatisfiedAfterThreeAttempts(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParser(batch("a", 2), batch("b", 2), batch("c", 2), batch("d", 2))

	f, store := newFinder(t, sc, cp)
	result, err := f.Find(context.Background(), "h1")
	require.NoError(t, err)

	assert.Len(t, result.Recipes, 6)
	assert.Equal(t, 3, cp.CallCount(), "2 new recipes per call must satisfy at attempt 3")
	assert.Len(t, sc.requests, 3)

	// Audit: one recipes-searched plus one recipe-suggested per recipe.
	events, err := store.Read(context.Background(), eventstore.Household("h1"))
	require.NoError(t, err)

	var searched, suggested int
	for _, ev := range events {
		switch ev.Type {
		case pantry.EventRecipesSearched:
			searched++
		case pantry.EventRecipeSuggested:
			suggested++
		}
	}
	assert.Equal(t, 1, searched)
	assert.Equal(t, 6, suggested)
}

func TestFinder_PreviousRecipesThreading(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParser(batch("a", 2), batch("b", 2), batch("c", 2))

	f, _ := newFinder(t, sc, cp)
	_, err := f.Find(context.Background(), "h1")
	require.NoError(t, err)

	require.Equal(t, 3, cp.CallCount())
	assert.Nil(t, cp.Inputs[0].PreviousRecipes, "first call signals no filtering needed")
	assert.Len(t, cp.Inputs[1].PreviousRecipes, 2)
	assert.Len(t, cp.Inputs[2].PreviousRecipes, 4)
}

func TestFinder_SearchPageAndFreshnessProgression(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParser() // never returns recipes

	f, _ := newFinder(t, sc, cp)
	result, err := f.Find(context.Background(), "h1")
	require.NoError(t, err)
	assert.Empty(t, result.Recipes)

	require.Len(t, sc.requests, 5, "the loop never exceeds the attempt budget")
	for i, req := range sc.requests {
		assert.Equal(t, i, req.Offset, "attempt %d offset", i+1)
	}
	assert.Empty(t, sc.requests[0].Freshness)
	assert.Empty(t, sc.requests[1].Freshness)
	assert.Equal(t, search.FreshnessPastMonth, sc.requests[2].Freshness,
		"third attempt carries the recency filter")
	assert.Empty(t, sc.requests[3].Freshness, "fallback attempts drop the filter")
}

func TestFinder_ExhaustedIsNotAnError(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParser()

	f, store := newFinder(t, sc, cp)
	result, err := f.Find(context.Background(), "h1")
	require.NoError(t, err, "soft exhaustion returns best-effort results")
	assert.Empty(t, result.Recipes)
	assert.Equal(t, 5, cp.CallCount())

	// Even an empty session leaves its recipes-searched audit record.
	events, err := store.Read(context.Background(), eventstore.Household("h1"))
	require.NoError(t, err)
	var searched int
	for _, ev := range events {
		if ev.Type == pantry.EventRecipesSearched {
			searched++
		}
	}
	assert.Equal(t, 1, searched)
}

func TestFinder_HardSearchFailureAbortsWithoutAudit(t *testing.T) {
	sc := &mockSearchClient{err: search.ErrUnavailable, failOn: 2}
	cp := mock.NewParser(batch("a", 2), batch("b", 2), batch("c", 2))

	f, store := newFinder(t, sc, cp)
	_, err := f.Find(context.Background(), "h1")
	require.ErrorIs(t, err, search.ErrUnavailable,
		"partial results are not returned on hard failure")

	events, readErr := store.Read(context.Background(), eventstore.Household("h1"))
	require.NoError(t, readErr)
	for _, ev := range events {
		assert.NotEqual(t, pantry.EventRecipeSuggested, ev.Type,
			"no recipe-suggested events for a failed session")
		assert.NotEqual(t, pantry.EventRecipesSearched, ev.Type)
	}
}

func TestFinder_ParserFailureAborts(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParserWithError(errors.New("model offline"))

	f, _ := newFinder(t, sc, cp)
	_, err := f.Find(context.Background(), "h1")
	assert.Error(t, err)
	assert.Len(t, sc.requests, 1, "the loop aborts on the failing attempt, no transparent retry")
}

func TestFinder_EnrichmentRanksResults(t *testing.T) {
	sc := &mockSearchClient{}
	full := parser.Output{Recipes: []pantryfinder.Recipe{
		{ID: "fancy", Title: "Fancy", Ingredients: []string{"truffle", "saffron"}},
		{ID: "omelette", Title: "Omelette", Ingredients: []string{"milk", "eggs"}},
		{ID: "latte", Title: "Latte", Ingredients: []string{"milk", "coffee"}},
		{ID: "x1", Title: "X1", Ingredients: []string{"tofu"}},
		{ID: "x2", Title: "X2", Ingredients: []string{"kale"}},
		{ID: "x3", Title: "X3", Ingredients: []string{"figs"}},
	}}
	cp := mock.NewParser(full)

	f, _ := newFinder(t, sc, cp)
	result, err := f.Find(context.Background(), "h1")
	require.NoError(t, err)

	require.Len(t, result.Recipes, 6)
	assert.Equal(t, "omelette", result.Recipes[0].ID, "best pantry match ranks first")
	assert.Equal(t, 100, result.Recipes[0].MatchPercent)
	assert.Equal(t, "latte", result.Recipes[1].ID)
	assert.Equal(t, 50, result.Recipes[1].MatchPercent)
}

func TestFinder_PreferenceSignalsReachParser(t *testing.T) {
	sc := &mockSearchClient{}
	cp := mock.NewParser(batch("a", 6))

	journal, store := newTestJournal(t)
	require.NoError(t, journal.AppendRecipeCooked(context.Background(), "h1",
		pantry.RecipeRef{RecipeID: "omelette", HouseholdID: "h1"}))
	require.NoError(t, journal.AppendRecipeDismissed(context.Background(), "h1",
		pantry.RecipeRef{RecipeID: "ceviche", HouseholdID: "h1"}))

	f := New(Config{
		Search:  sc,
		Parser:  cp,
		Loader:  pantry.NewContextLoader(store, nil),
		Journal: journal,
		Rand:    rand.New(rand.NewSource(1)),
	})

	_, err := f.Find(context.Background(), "h1")
	require.NoError(t, err)

	assert.Equal(t, []string{"omelette"}, cp.LastInput.Preferences.Cooked)
	assert.Equal(t, []string{"ceviche"}, cp.LastInput.Preferences.Dismissed)
}
