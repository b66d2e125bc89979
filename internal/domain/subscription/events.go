package subscription

import "time"

const EventSubscriptionCreated = "SubscriptionCreated"

type SubscriptionCreated struct {
	SubscriptionID string    `json:"subscription_id"`
	Phone          string    `json:"phone"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
