package product

import "time"

const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

type ProductCreated struct {
	ProductID    string    `json:"product_id"`
	Title        string    `json:"title"`
	SKU          string    `json:"sku,omitempty"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	Purity       string    `json:"purity"`
	Weight       *float64  `json:"weight,omitempty"`
	PricePerGram *float64  `json:"price_per_gram,omitempty"`
	Images       []Image   `json:"images"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductUpdated replaces every editable field of the product
type ProductUpdated struct {
	ProductID    string    `json:"product_id"`
	Title        string    `json:"title"`
	SKU          string    `json:"sku,omitempty"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	Purity       string    `json:"purity"`
	Weight       *float64  `json:"weight,omitempty"`
	PricePerGram *float64  `json:"price_per_gram,omitempty"`
	Images       []Image   `json:"images"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductDeleted carries the CDN handles of the product's images so the notifier can remove them
type ProductDeleted struct {
	ProductID      string    `json:"product_id"`
	ImagePublicIDs []string  `json:"image_public_ids,omitempty"`
	DeletedAt      time.Time `json:"deleted_at"`
}
