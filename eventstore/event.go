package eventstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dimensions used for event tagging. Every persisted event carries at least
// a household tag; item-scoped events carry an item tag as well.
const (
	DimHousehold = "household"
	DimItem      = "item"
)

// Tag is a (dimension, id) pair attached to an event to enable filtered replay.
type Tag struct {
	Dim string `json:"dim"`
	ID  string `json:"id"`
}

func Household(id string) Tag { return Tag{Dim: DimHousehold, ID: id} }
func Item(id string) Tag      { return Tag{Dim: DimItem, ID: id} }

// Event is a single immutable entry in the append-only log.
type Event struct {
	ID   uuid.UUID       `json:"id"`
	Type string          `json:"type"`
	Tags []Tag           `json:"tags"`
	Body json.RawMessage `json:"body"`
	At   time.Time       `json:"at"`
}

// New builds an event with a fresh ID and the given JSON-serializable body.
func New(eventType string, body any, tags ...Tag) (Event, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s body: %w", eventType, err)
	}
	return Event{
		ID:   uuid.New(),
		Type: eventType,
		Tags: tags,
		Body: raw,
		At:   time.Now().UTC(),
	}, nil
}

// HasTag reports whether the event carries the given tag.
func (e Event) HasTag(t Tag) bool {
	for _, tag := range e.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

// HouseholdID returns the id of the event's household tag, if present.
func (e Event) HouseholdID() (string, bool) {
	for _, tag := range e.Tags {
		if tag.Dim == DimHousehold {
			return tag.ID, true
		}
	}
	return "", false
}

// DecodeBody unmarshals the event body into v.
func (e Event) DecodeBody(v any) error {
	if err := json.Unmarshal(e.Body, v); err != nil {
		return fmt.Errorf("failed to decode %s body: %w", e.Type, err)
	}
	return nil
}
