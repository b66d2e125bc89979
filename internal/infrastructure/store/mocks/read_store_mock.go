package mocks

import (
	"sync"
	"time"

	"github.com/example/lastara-storefront/internal/readmodel"
)

// MockReadStore is a mock implementation of ReadStoreInterface for testing
type MockReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> data

	// For tracking calls in tests
	SetCalls    []SetCall
	DeleteCalls []DeleteCall
	GetAllCalls []string

	// Err, when set, is returned by every operation
	Err error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Collection string
	ID         string
	Data       any
}

// DeleteCall records parameters passed to Delete
type DeleteCall struct {
	Collection string
	ID         string
}

// NewMockReadStore creates a new MockReadStore
func NewMockReadStore() *MockReadStore {
	return &MockReadStore{
		data: make(map[string]map[string]any),
	}
}

// Set stores a read model
func (m *MockReadStore) Set(collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Collection: collection, ID: id, Data: data})
	if m.Err != nil {
		return m.Err
	}
	m.setLocked(collection, id, data)
	return nil
}

func (m *MockReadStore) setLocked(collection, id string, data any) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	m.data[collection][id] = data
}

// Get retrieves a read model by id
func (m *MockReadStore) Get(collection, id string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, false, m.Err
	}
	data, ok := m.data[collection][id]
	return data, ok, nil
}

// GetAll retrieves all items in a collection
func (m *MockReadStore) GetAll(collection string) ([]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetAllCalls = append(m.GetAllCalls, collection)
	if m.Err != nil {
		return nil, m.Err
	}
	items := make([]any, 0, len(m.data[collection]))
	for _, item := range m.data[collection] {
		items = append(items, item)
	}
	return items, nil
}

// Delete removes a read model
func (m *MockReadStore) Delete(collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{Collection: collection, ID: id})
	if m.Err != nil {
		return m.Err
	}
	delete(m.data[collection], id)
	return nil
}

// Update modifies a read model using an update function
func (m *MockReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	current, ok := m.data[collection][id]
	if !ok {
		return false, nil
	}
	m.data[collection][id] = updateFn(current)
	return true, nil
}

// GetOperatorByEmail scans the operators collection
func (m *MockReadStore) GetOperatorByEmail(email string) (*readmodel.OperatorReadModel, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, false, m.Err
	}
	for _, item := range m.data[readmodel.CollectionOperators] {
		if op, ok := item.(*readmodel.OperatorReadModel); ok && op.Email == email {
			return op, true, nil
		}
	}
	return nil, false, nil
}

// GetSubscriptionByPhone scans the subscriptions collection
func (m *MockReadStore) GetSubscriptionByPhone(phone string) (*readmodel.SubscriptionReadModel, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, false, m.Err
	}
	for _, item := range m.data[readmodel.CollectionSubscriptions] {
		if sub, ok := item.(*readmodel.SubscriptionReadModel); ok && sub.Phone == phone {
			return sub, true, nil
		}
	}
	return nil, false, nil
}

// DeleteSessionsByOperator removes every session of an operator
func (m *MockReadStore) DeleteSessionsByOperator(operatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for id, item := range m.data[readmodel.CollectionSessions] {
		if s, ok := item.(*readmodel.SessionReadModel); ok && s.OperatorID == operatorID {
			delete(m.data[readmodel.CollectionSessions], id)
		}
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before the given time
func (m *MockReadStore) DeleteExpiredSessions(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, item := range m.data[readmodel.CollectionSessions] {
		if s, ok := item.(*readmodel.SessionReadModel); ok && s.ExpiresAt.Before(before) {
			delete(m.data[readmodel.CollectionSessions], id)
			n++
		}
	}
	return n, nil
}

// SetData seeds data without recording a Set call
func (m *MockReadStore) SetData(collection, id string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(collection, id, data)
}

// GetData reads data without error injection
func (m *MockReadStore) GetData(collection, id string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[collection][id]
	return data, ok
}

// Count returns the number of items stored in a collection
func (m *MockReadStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}
