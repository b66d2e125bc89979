package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockEventStore is a mock implementation of EventStoreInterface for testing
type MockEventStore struct {
	mu     sync.RWMutex
	events map[string][]store.Event
	clock  func() time.Time

	// For tracking calls in tests
	AppendCalls []AppendCall
	AppendErr   error
	// Publisher, when set, receives every appended event like a real store would forward it
	Publisher store.Publisher
}

// AppendCall records parameters passed to Append
type AppendCall struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
}

// NewMockEventStore creates a new MockEventStore
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		events:      make(map[string][]store.Event),
		clock:       time.Now,
		AppendCalls: make([]AppendCall, 0),
	}
}

// SetClock overrides the timestamp source for appended events
func (m *MockEventStore) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// Append records the call and stores the event in memory
func (m *MockEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	return m.record(ctx, aggregateID, aggregateType, eventType, data, false)
}

// Create records the call like Append and rejects aggregates that already have events
func (m *MockEventStore) Create(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	return m.record(ctx, aggregateID, aggregateType, eventType, data, true)
}

func (m *MockEventStore) record(ctx context.Context, aggregateID, aggregateType, eventType string, data any, create bool) (*store.Event, error) {
	m.mu.Lock()
	m.AppendCalls = append(m.AppendCalls, AppendCall{
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
	})
	if m.AppendErr != nil {
		m.mu.Unlock()
		return nil, m.AppendErr
	}
	if create && len(m.events[aggregateID]) > 0 {
		m.mu.Unlock()
		return nil, store.ErrAggregateExists
	}
	event, err := m.appendLocked(aggregateID, aggregateType, eventType, data)
	publisher := m.Publisher
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if publisher != nil {
		if err := publisher.Publish(ctx, aggregateID, *event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

func (m *MockEventStore) appendLocked(aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	event := store.Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     m.clock(),
		Version:       len(m.events[aggregateID]) + 1,
	}
	m.events[aggregateID] = append(m.events[aggregateID], event)
	return &event, nil
}

// GetEvents returns events for an aggregate
func (m *MockEventStore) GetEvents(aggregateID string) []store.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.Event(nil), m.events[aggregateID]...)
}

// GetAllEvents returns all events ordered by timestamp
func (m *MockEventStore) GetAllEvents() []store.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []store.Event
	for _, events := range m.events {
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// AddEvent seeds an event without recording an Append call
func (m *MockEventStore) AddEvent(aggregateID, aggregateType, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.appendLocked(aggregateID, aggregateType, eventType, data)
	return err
}

// EventTypes lists the recorded Append event types in call order
func (m *MockEventStore) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]string, 0, len(m.AppendCalls))
	for _, c := range m.AppendCalls {
		types = append(types, c.EventType)
	}
	return types
}

// Reset clears all events and recorded calls
func (m *MockEventStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make(map[string][]store.Event)
	m.AppendCalls = make([]AppendCall, 0)
	m.AppendErr = nil
}
