package pantry

import (
	"github.com/google/uuid"

	"pantryfinder/eventstore"
)

// ReducePantry rebuilds the pantry read model by replaying item events
// through a pure reducer. Items come back in first-added order.
func ReducePantry(events []eventstore.Event) ([]Item, error) {
	byID := make(map[uuid.UUID]Item)
	order := make([]uuid.UUID, 0)

	for _, ev := range events {
		switch ev.Type {
		case EventItemAdded:
			var item Item
			if err := ev.DecodeBody(&item); err != nil {
				return nil, err
			}
			if _, exists := byID[item.ID]; !exists {
				order = append(order, item.ID)
			}
			byID[item.ID] = item

		case EventItemUpdated:
			var item Item
			if err := ev.DecodeBody(&item); err != nil {
				return nil, err
			}
			if _, exists := byID[item.ID]; exists {
				byID[item.ID] = item
			}

		case EventItemRemoved:
			var ref ItemRef
			if err := ev.DecodeBody(&ref); err != nil {
				return nil, err
			}
			delete(byID, ref.ID)
		}
	}

	items := make([]Item, 0, len(byID))
	for _, id := range order {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// ReducePreferences folds recipe interaction events into preference signals.
// A recipe appears at most once per signal, in first-interaction order.
func ReducePreferences(events []eventstore.Event) (Preferences, error) {
	var prefs Preferences
	seen := map[string]map[string]bool{
		EventRecipeViewed:    {},
		EventRecipeCooked:    {},
		EventRecipeDismissed: {},
	}

	for _, ev := range events {
		ids, ok := seen[ev.Type]
		if !ok {
			continue
		}
		var ref RecipeRef
		if err := ev.DecodeBody(&ref); err != nil {
			return Preferences{}, err
		}
		if ids[ref.RecipeID] {
			continue
		}
		ids[ref.RecipeID] = true

		switch ev.Type {
		case EventRecipeViewed:
			prefs.Viewed = append(prefs.Viewed, ref.RecipeID)
		case EventRecipeCooked:
			prefs.Cooked = append(prefs.Cooked, ref.RecipeID)
		case EventRecipeDismissed:
			prefs.Dismissed = append(prefs.Dismissed, ref.RecipeID)
		}
	}

	return prefs, nil
}

// ReduceShopping rebuilds the shopping-list read model from shopping events.
func ReduceShopping(events []eventstore.Event) ([]ShoppingItem, error) {
	byID := make(map[uuid.UUID]ShoppingItem)
	order := make([]uuid.UUID, 0)

	for _, ev := range events {
		switch ev.Type {
		case EventShoppingAdded:
			var item ShoppingItem
			if err := ev.DecodeBody(&item); err != nil {
				return nil, err
			}
			if _, exists := byID[item.ID]; !exists {
				order = append(order, item.ID)
			}
			byID[item.ID] = item

		case EventShoppingDone:
			var item ShoppingItem
			if err := ev.DecodeBody(&item); err != nil {
				return nil, err
			}
			if existing, ok := byID[item.ID]; ok {
				existing.Checked = true
				byID[item.ID] = existing
			}

		case EventShoppingGone:
			var ref ItemRef
			if err := ev.DecodeBody(&ref); err != nil {
				return nil, err
			}
			delete(byID, ref.ID)
		}
	}

	items := make([]ShoppingItem, 0, len(byID))
	for _, id := range order {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}
