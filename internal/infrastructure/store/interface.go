package store

import (
	"context"
	"errors"
)

var (
	// ErrAggregateExists is returned by Create when the aggregate already has events
	ErrAggregateExists = errors.New("aggregate already exists")
	// ErrVersionConflict is returned by Append when another append for the same
	// aggregate claimed the version first
	ErrVersionConflict = errors.New("aggregate version conflict")
)

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	// Create appends the first event of a new aggregate, atomically failing with
	// ErrAggregateExists when one is already stored under aggregateID
	Create(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(aggregateID string) []Event
	GetAllEvents() []Event
}

// Publisher forwards appended events to the projection side.
// kafka.Producer and projection.Projector (inline mode) both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
