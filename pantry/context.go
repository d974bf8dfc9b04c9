package pantry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pantryfinder/eventstore"
)

const expiringWindowDays = 3

// Context is the serializable pantry snapshot handed to the candidate
// parser. The boundary format is textual JSON, so item IDs are rendered as
// strings here rather than passing opaque binary tokens through.
type Context struct {
	HouseholdID   string         `json:"household_id"`
	Items         []ContextItem  `json:"items"`
	ShoppingItems []ShoppingLine `json:"shopping_items,omitempty"`
	ExpiringSoon  []ContextItem  `json:"expiring_soon,omitempty"`
	Categories    []string       `json:"categories,omitempty"`
}

type ContextItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category,omitempty"`
	Expires  string  `json:"expires,omitempty"`
}

type ShoppingLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Checked  bool    `json:"checked"`
}

// IngredientNames returns the pantry item names in projection order, the
// ordered ingredient list the query builder draws from.
func (c Context) IngredientNames() []string {
	names := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		names = append(names, item.Name)
	}
	return names
}

// ContextLoader snapshots current pantry and shopping-list state for one
// household by replaying its event stream through the projections.
type ContextLoader struct {
	store eventstore.Store
	now   func() time.Time
}

// NewContextLoader creates a loader. now may be nil, in which case wall
// clock time is used; tests inject a fixed clock.
func NewContextLoader(store eventstore.Store, now func() time.Time) *ContextLoader {
	if now == nil {
		now = time.Now
	}
	return &ContextLoader{store: store, now: now}
}

// Load replays the household's events and computes the derived views: items
// expiring within 3 calendar days of now (inclusive) and the distinct set of
// categories in use.
func (l *ContextLoader) Load(ctx context.Context, householdID string) (Context, error) {
	events, err := l.store.Read(ctx, eventstore.Household(householdID))
	if err != nil {
		return Context{}, fmt.Errorf("failed to read household events: %w", err)
	}

	items, err := ReducePantry(events)
	if err != nil {
		return Context{}, err
	}
	shopping, err := ReduceShopping(events)
	if err != nil {
		return Context{}, err
	}

	out := Context{
		HouseholdID:   householdID,
		Items:         make([]ContextItem, 0, len(items)),
		ShoppingItems: make([]ShoppingLine, 0, len(shopping)),
	}

	today := truncateToDay(l.now())
	categories := make(map[string]bool)

	for _, item := range items {
		ci := ContextItem{
			ID:       item.ID.String(),
			Name:     item.Name,
			Quantity: item.Quantity,
			Category: item.Category,
			Expires:  item.Expires,
		}
		out.Items = append(out.Items, ci)

		if item.Category != "" {
			categories[item.Category] = true
		}

		// Calendar-day granularity: an item expiring any time today through
		// three days out counts as expiring soon. Unparseable dates are
		// skipped, not errors.
		if expires, err := time.Parse("2006-01-02", item.Expires); err == nil {
			days := int(truncateToDay(expires).Sub(today).Hours() / 24)
			if days >= 0 && days <= expiringWindowDays {
				out.ExpiringSoon = append(out.ExpiringSoon, ci)
			}
		}
	}

	for _, item := range shopping {
		out.ShoppingItems = append(out.ShoppingItems, ShoppingLine{
			ID:       item.ID.String(),
			Name:     item.Name,
			Quantity: item.Quantity,
			Checked:  item.Checked,
		})
	}

	out.Categories = make([]string, 0, len(categories))
	for c := range categories {
		out.Categories = append(out.Categories, c)
	}
	sort.Strings(out.Categories)

	return out, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
