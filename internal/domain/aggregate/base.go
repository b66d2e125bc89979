package aggregate

import (
	"fmt"

	"github.com/example/lastara-storefront/internal/infrastructure/store"
)

// Aggregate defines the interface for event-sourced aggregates
type Aggregate interface {
	GetID() string
	GetVersion() int
	ApplyEvent(store.Event) error
}

// Load rebuilds an aggregate by replaying its events.
// The boolean reports whether any event exists for id.
func Load[T Aggregate](eventStore store.EventStoreInterface, id string, newAggregate func() T) (T, bool, error) {
	agg := newAggregate()

	events := eventStore.GetEvents(id)
	for _, event := range events {
		if err := agg.ApplyEvent(event); err != nil {
			var zero T
			return zero, false, fmt.Errorf("failed to apply %s v%d: %w", event.EventType, event.Version, err)
		}
	}

	return agg, len(events) > 0, nil
}
