package readmodel

import "time"

// Collection names used with the read stores
const (
	CollectionProducts      = "products"
	CollectionSlides        = "slides"
	CollectionSubscriptions = "subscriptions"
	CollectionOperators     = "operators"
	CollectionSessions      = "sessions"
)

// ImageReadModel is a CDN-hosted image; PublicID is the handle used to delete it
type ImageReadModel struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// ProductReadModel is the read model for catalog products
type ProductReadModel struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	SKU          string           `json:"sku,omitempty"`
	Description  string           `json:"description,omitempty"`
	Category     string           `json:"category"`
	Purity       string           `json:"purity"`
	Weight       *float64         `json:"weight,omitempty"`
	PricePerGram *float64         `json:"price_per_gram,omitempty"`
	Images       []ImageReadModel `json:"images"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// SlideReadModel is the read model for hero slides
type SlideReadModel struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle"`
	ButtonText string         `json:"button_text,omitempty"`
	ButtonLink string         `json:"button_link,omitempty"`
	Image      ImageReadModel `json:"image"`
	CreatedAt  time.Time      `json:"created_at"`
}

// SubscriptionReadModel is the read model for newsletter subscriptions
type SubscriptionReadModel struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OperatorReadModel is the read model for back-office operators
type OperatorReadModel struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SessionReadModel is the read model for operator sessions
type SessionReadModel struct {
	ID               string    `json:"id"`
	OperatorID       string    `json:"operator_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
}

// TestimonialReadModel is a customer quote as served on /api/testimonials.
// The catalog store does not project testimonials; storefronts fall back to
// their configured list when the route is absent.
type TestimonialReadModel struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Image   ImageReadModel `json:"image"`
}
