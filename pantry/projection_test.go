package pantry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryfinder/eventstore"
)

func TestJournal_RejectsHouseholdMismatch(t *testing.T) {
	ctx := context.Background()
	journal := NewJournal(eventstore.NewMemoryStore())

	item := Item{ID: uuid.New(), HouseholdID: "h2", Name: "milk", Quantity: 1}

	err := journal.AppendItemAdded(ctx, "h1", item)
	require.ErrorIs(t, err, ErrHouseholdMismatch)

	events, err := journal.Events(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, events, "a rejected event must not reach the log")
}

func TestReducePantry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	journal := NewJournal(store)

	milkID := uuid.New()
	riceID := uuid.New()

	milk := Item{ID: milkID, HouseholdID: "h1", Name: "milk", Quantity: 1, Category: "dairy", Expires: "2026-09-01"}
	rice := Item{ID: riceID, HouseholdID: "h1", Name: "rice", Quantity: 2, Category: "grains"}

	require.NoError(t, journal.AppendItemAdded(ctx, "h1", milk))
	require.NoError(t, journal.AppendItemAdded(ctx, "h1", rice))

	milk.Quantity = 3
	require.NoError(t, journal.AppendItemUpdated(ctx, "h1", milk))
	require.NoError(t, journal.AppendItemRemoved(ctx, "h1", ItemRef{ID: riceID, HouseholdID: "h1"}))

	events, err := journal.Events(ctx, "h1")
	require.NoError(t, err)

	items, err := ReducePantry(events)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Name)
	assert.Equal(t, 3.0, items[0].Quantity, "update must win over the original add")
}

func TestReducePantry_UpdateForUnknownItemIsIgnored(t *testing.T) {
	ev, err := eventstore.New(EventItemUpdated,
		Item{ID: uuid.New(), HouseholdID: "h1", Name: "ghost"},
		eventstore.Household("h1"))
	require.NoError(t, err)

	items, err := ReducePantry([]eventstore.Event{ev})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReduceShopping_CheckedAndRemoved(t *testing.T) {
	ctx := context.Background()
	journal := NewJournal(eventstore.NewMemoryStore())

	breadID := uuid.New()
	coffeeID := uuid.New()

	require.NoError(t, journal.AppendShoppingAdded(ctx, "h1",
		ShoppingItem{ID: breadID, HouseholdID: "h1", Name: "bread", Quantity: 1}))
	require.NoError(t, journal.AppendShoppingAdded(ctx, "h1",
		ShoppingItem{ID: coffeeID, HouseholdID: "h1", Name: "coffee", Quantity: 1}))
	require.NoError(t, journal.AppendShoppingChecked(ctx, "h1",
		ShoppingItem{ID: breadID, HouseholdID: "h1", Name: "bread", Quantity: 1}))
	require.NoError(t, journal.AppendShoppingRemoved(ctx, "h1",
		ItemRef{ID: coffeeID, HouseholdID: "h1"}))

	events, err := journal.Events(ctx, "h1")
	require.NoError(t, err)

	items, err := ReduceShopping(events)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bread", items[0].Name)
	assert.True(t, items[0].Checked)
}

func TestProjections_IgnoreOtherHouseholds(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	journal := NewJournal(store)

	require.NoError(t, journal.AppendItemAdded(ctx, "h1",
		Item{ID: uuid.New(), HouseholdID: "h1", Name: "milk", Quantity: 1}))
	require.NoError(t, journal.AppendItemAdded(ctx, "h2",
		Item{ID: uuid.New(), HouseholdID: "h2", Name: "eggs", Quantity: 12}))

	events, err := journal.Events(ctx, "h1")
	require.NoError(t, err)

	items, err := ReducePantry(events)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Name)
}
