package store

import (
	"time"

	"github.com/example/lastara-storefront/internal/readmodel"
)

// ReadStoreInterface defines the interface for read model storage
type ReadStoreInterface interface {
	// Set stores a read model
	Set(collection, id string, data any) error

	// Get retrieves a read model by id
	Get(collection, id string) (any, bool, error)

	// GetAll retrieves all items in a collection
	GetAll(collection string) ([]any, error)

	// Delete removes a read model
	Delete(collection, id string) error

	// Update modifies a read model using an update function
	Update(collection, id string, updateFn func(current any) any) (bool, error)

	GetOperatorByEmail(email string) (*readmodel.OperatorReadModel, bool, error)
	GetSubscriptionByPhone(phone string) (*readmodel.SubscriptionReadModel, bool, error)
	DeleteSessionsByOperator(operatorID string) error

	// DeleteExpiredSessions removes sessions that expired before the given time
	DeleteExpiredSessions(before time.Time) (int64, error)
}
