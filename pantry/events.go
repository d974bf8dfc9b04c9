package pantry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pantryfinder/eventstore"
)

// Event types recorded in the household journal.
const (
	EventItemAdded     = "pantry-item-added"
	EventItemUpdated   = "pantry-item-updated"
	EventItemRemoved   = "pantry-item-removed"
	EventShoppingAdded = "shopping-item-added"
	EventShoppingDone  = "shopping-item-checked"
	EventShoppingGone  = "shopping-item-removed"

	EventRecipesSearched = "recipes-searched"
	EventRecipeSuggested = "recipe-suggested"
	EventRecipeViewed    = "recipe-viewed"
	EventRecipeCooked    = "recipe-cooked"
	EventRecipeDismissed = "recipe-dismissed"
)

// ErrHouseholdMismatch is returned when an event body names a household other
// than the one the event is being filed under.
var ErrHouseholdMismatch = errors.New("event body household does not match event tag")

// Item is a pantry item as projected from the event log.
type Item struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Category    string    `json:"category,omitempty"`
	Expires     string    `json:"expires,omitempty"` // YYYY-MM-DD, may be absent or unparseable
}

// ShoppingItem is a shopping-list entry as projected from the event log.
type ShoppingItem struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Checked     bool      `json:"checked"`
}

// ItemRef identifies an item in remove/check events.
type ItemRef struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID string    `json:"household_id"`
}

// RecipesSearched is the audit record of one search attempt.
type RecipesSearched struct {
	Query        string `json:"query"`
	ResultsCount int    `json:"results_count"`
	HouseholdID  string `json:"household_id"`
}

// RecipeSuggested is the audit record of one suggested recipe.
type RecipeSuggested struct {
	RecipeID    string `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title"`
	Reasoning   string `json:"reasoning,omitempty"`
	MatchScore  int    `json:"match_score"`
	HouseholdID string `json:"household_id"`
}

// RecipeRef records a household interacting with a suggested recipe.
type RecipeRef struct {
	RecipeID    string `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title,omitempty"`
	HouseholdID string `json:"household_id"`
}

// Preferences summarizes a household's recipe interaction history; the
// candidate parser uses it to bias its picks.
type Preferences struct {
	Viewed    []string `json:"viewed,omitempty"`
	Cooked    []string `json:"cooked,omitempty"`
	Dismissed []string `json:"dismissed,omitempty"`
}

// Journal is the typed write/read surface over the event store. Append
// helpers enforce at write time that the body's household matches the
// household tag; the projections trust that invariant on replay.
type Journal struct {
	store eventstore.Store
}

func NewJournal(store eventstore.Store) *Journal {
	return &Journal{store: store}
}

func (j *Journal) AppendItemAdded(ctx context.Context, householdID string, item Item) error {
	return j.appendItemEvent(ctx, EventItemAdded, householdID, item)
}

func (j *Journal) AppendItemUpdated(ctx context.Context, householdID string, item Item) error {
	return j.appendItemEvent(ctx, EventItemUpdated, householdID, item)
}

func (j *Journal) AppendItemRemoved(ctx context.Context, householdID string, ref ItemRef) error {
	if ref.HouseholdID != householdID {
		return fmt.Errorf("%s for item %s: %w", EventItemRemoved, ref.ID, ErrHouseholdMismatch)
	}
	ev, err := eventstore.New(EventItemRemoved, ref, eventstore.Household(householdID), eventstore.Item(ref.ID.String()))
	if err != nil {
		return err
	}
	return j.store.Append(ctx, ev)
}

func (j *Journal) appendItemEvent(ctx context.Context, eventType, householdID string, item Item) error {
	if item.HouseholdID != householdID {
		return fmt.Errorf("%s for item %s: %w", eventType, item.ID, ErrHouseholdMismatch)
	}
	ev, err := eventstore.New(eventType, item, eventstore.Household(householdID), eventstore.Item(item.ID.String()))
	if err != nil {
		return err
	}
	return j.store.Append(ctx, ev)
}

func (j *Journal) AppendShoppingAdded(ctx context.Context, householdID string, item ShoppingItem) error {
	return j.appendShoppingEvent(ctx, EventShoppingAdded, householdID, item)
}

func (j *Journal) AppendShoppingChecked(ctx context.Context, householdID string, item ShoppingItem) error {
	item.Checked = true
	return j.appendShoppingEvent(ctx, EventShoppingDone, householdID, item)
}

func (j *Journal) AppendShoppingRemoved(ctx context.Context, householdID string, ref ItemRef) error {
	if ref.HouseholdID != householdID {
		return fmt.Errorf("%s for item %s: %w", EventShoppingGone, ref.ID, ErrHouseholdMismatch)
	}
	ev, err := eventstore.New(EventShoppingGone, ref, eventstore.Household(householdID), eventstore.Item(ref.ID.String()))
	if err != nil {
		return err
	}
	return j.store.Append(ctx, ev)
}

func (j *Journal) appendShoppingEvent(ctx context.Context, eventType, householdID string, item ShoppingItem) error {
	if item.HouseholdID != householdID {
		return fmt.Errorf("%s for item %s: %w", eventType, item.ID, ErrHouseholdMismatch)
	}
	ev, err := eventstore.New(eventType, item, eventstore.Household(householdID), eventstore.Item(item.ID.String()))
	if err != nil {
		return err
	}
	return j.store.Append(ctx, ev)
}

func (j *Journal) AppendRecipeViewed(ctx context.Context, householdID string, ref RecipeRef) error {
	return j.appendRecipeEvent(ctx, EventRecipeViewed, householdID, ref)
}

func (j *Journal) AppendRecipeCooked(ctx context.Context, householdID string, ref RecipeRef) error {
	return j.appendRecipeEvent(ctx, EventRecipeCooked, householdID, ref)
}

func (j *Journal) AppendRecipeDismissed(ctx context.Context, householdID string, ref RecipeRef) error {
	return j.appendRecipeEvent(ctx, EventRecipeDismissed, householdID, ref)
}

func (j *Journal) appendRecipeEvent(ctx context.Context, eventType, householdID string, ref RecipeRef) error {
	if ref.HouseholdID != householdID {
		return fmt.Errorf("%s for recipe %s: %w", eventType, ref.RecipeID, ErrHouseholdMismatch)
	}
	ev, err := eventstore.New(eventType, ref, eventstore.Household(householdID))
	if err != nil {
		return err
	}
	return j.store.Append(ctx, ev)
}

// AppendSearchAudit records one recipes-searched event plus one
// recipe-suggested event per suggestion, all tagged to the household.
func (j *Journal) AppendSearchAudit(ctx context.Context, householdID string, searched RecipesSearched, suggested []RecipeSuggested) error {
	if searched.HouseholdID != householdID {
		return fmt.Errorf("%s: %w", EventRecipesSearched, ErrHouseholdMismatch)
	}

	events := make([]eventstore.Event, 0, 1+len(suggested))

	ev, err := eventstore.New(EventRecipesSearched, searched, eventstore.Household(householdID))
	if err != nil {
		return err
	}
	events = append(events, ev)

	for _, s := range suggested {
		if s.HouseholdID != householdID {
			return fmt.Errorf("%s for recipe %s: %w", EventRecipeSuggested, s.RecipeID, ErrHouseholdMismatch)
		}
		ev, err := eventstore.New(EventRecipeSuggested, s, eventstore.Household(householdID))
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	return j.store.Append(ctx, events...)
}

// Events returns the household's full event stream in append order.
func (j *Journal) Events(ctx context.Context, householdID string) ([]eventstore.Event, error) {
	return j.store.Read(ctx, eventstore.Household(householdID))
}
