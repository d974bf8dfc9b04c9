package eventstore

import (
	"context"
	"sync"
)

// Subscriber receives every event appended to a store, in append order.
type Subscriber func(Event)

// Store is an append-only, tag-filterable event log.
type Store interface {
	// Append adds events to the log. Events are never updated or removed.
	Append(ctx context.Context, events ...Event) error

	// Read returns, in append order, the events carrying all of the given
	// tags. No tags means the full log.
	Read(ctx context.Context, match ...Tag) ([]Event, error)

	// Subscribe registers fn for fan-out on future appends and returns a
	// cancel func.
	Subscribe(fn Subscriber) func()
}

// MemoryStore is the in-process Store used by tests and as the cache layer
// of the durable stores.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	subs   map[int]Subscriber
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[int]Subscriber)}
}

func (s *MemoryStore) Append(ctx context.Context, events ...Event) error {
	s.mu.Lock()
	s.events = append(s.events, events...)
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Fan out after releasing the lock so a subscriber may Read.
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, match ...Tag) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if matchesAll(ev, match) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *MemoryStore) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func matchesAll(ev Event, tags []Tag) bool {
	for _, t := range tags {
		if !ev.HasTag(t) {
			return false
		}
	}
	return true
}
