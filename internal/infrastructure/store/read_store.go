package store

import (
	"sync"
	"time"

	"github.com/example/lastara-storefront/internal/readmodel"
)

// ReadStore is an in-memory read model store
type ReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> data
}

func NewReadStore() *ReadStore {
	return &ReadStore{
		data: make(map[string]map[string]any),
	}
}

// Set stores a read model
func (rs *ReadStore) Set(collection, id string, data any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]any)
	}
	rs.data[collection][id] = data
	return nil
}

// Get retrieves a read model by id
func (rs *ReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	data, ok := rs.data[collection][id]
	return data, ok, nil
}

// GetAll retrieves all items in a collection, in no particular order
func (rs *ReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	items := make([]any, 0, len(rs.data[collection]))
	for _, item := range rs.data[collection] {
		items = append(items, item)
	}
	return items, nil
}

// Delete removes a read model
func (rs *ReadStore) Delete(collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	delete(rs.data[collection], id)
	return nil
}

// Update modifies a read model using an update function
func (rs *ReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, ok := rs.data[collection][id]
	if !ok {
		return false, nil
	}
	rs.data[collection][id] = updateFn(current)
	return true, nil
}

func (rs *ReadStore) GetOperatorByEmail(email string) (*readmodel.OperatorReadModel, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, item := range rs.data[readmodel.CollectionOperators] {
		if op := item.(*readmodel.OperatorReadModel); op.Email == email {
			return op, true, nil
		}
	}
	return nil, false, nil
}

func (rs *ReadStore) GetSubscriptionByPhone(phone string) (*readmodel.SubscriptionReadModel, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, item := range rs.data[readmodel.CollectionSubscriptions] {
		if sub := item.(*readmodel.SubscriptionReadModel); sub.Phone == phone {
			return sub, true, nil
		}
	}
	return nil, false, nil
}

func (rs *ReadStore) DeleteSessionsByOperator(operatorID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for id, item := range rs.data[readmodel.CollectionSessions] {
		if item.(*readmodel.SessionReadModel).OperatorID == operatorID {
			delete(rs.data[readmodel.CollectionSessions], id)
		}
	}
	return nil
}

func (rs *ReadStore) DeleteExpiredSessions(before time.Time) (int64, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var n int64
	for id, item := range rs.data[readmodel.CollectionSessions] {
		if item.(*readmodel.SessionReadModel).ExpiresAt.Before(before) {
			delete(rs.data[readmodel.CollectionSessions], id)
			n++
		}
	}
	return n, nil
}
