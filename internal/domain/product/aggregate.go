package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/example/lastara-storefront/internal/domain/aggregate"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Product"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidTitle    = errors.New("title is required")
	ErrInvalidWeight   = errors.New("weight must not be negative")
	ErrInvalidPrice    = errors.New("price per gram must not be negative")
	ErrInvalidImage    = errors.New("image url is required")
)

// Image is a CDN-hosted picture; PublicID is the handle used to destroy it
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// NewProduct holds the editable fields of a product
type NewProduct struct {
	Title        string   `json:"title"`
	SKU          string   `json:"sku"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Purity       string   `json:"purity"`
	Weight       *float64 `json:"weight"`
	PricePerGram *float64 `json:"price_per_gram"`
	Images       []Image  `json:"images"`
}

func (p *NewProduct) validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return ErrInvalidTitle
	}
	if p.Weight != nil && *p.Weight < 0 {
		return ErrInvalidWeight
	}
	if p.PricePerGram != nil && *p.PricePerGram < 0 {
		return ErrInvalidPrice
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img.URL) == "" {
			return ErrInvalidImage
		}
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	return nil
}

type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SKU          string    `json:"sku,omitempty"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	Purity       string    `json:"purity"`
	Weight       *float64  `json:"weight,omitempty"`
	PricePerGram *float64  `json:"price_per_gram,omitempty"`
	Images       []Image   `json:"images"`
	IsDeleted    bool      `json:"is_deleted,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Product) GetID() string   { return p.ID }
func (p *Product) GetVersion() int { return p.Version }

// ApplyEvent folds one stored event into the product state
func (p *Product) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventProductCreated:
		var e ProductCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.ID = e.ProductID
		p.Title, p.SKU, p.Description = e.Title, e.SKU, e.Description
		p.Category, p.Purity = e.Category, e.Purity
		p.Weight, p.PricePerGram = e.Weight, e.PricePerGram
		p.Images = e.Images
		p.CreatedAt, p.UpdatedAt = e.CreatedAt, e.CreatedAt
	case EventProductUpdated:
		var e ProductUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.Title, p.SKU, p.Description = e.Title, e.SKU, e.Description
		p.Category, p.Purity = e.Category, e.Purity
		p.Weight, p.PricePerGram = e.Weight, e.PricePerGram
		p.Images = e.Images
		p.UpdatedAt = e.UpdatedAt
	case EventProductDeleted:
		p.IsDeleted = true
	}
	p.Version = event.Version
	return nil
}

// ImagePublicIDs lists the non-empty CDN handles of the product's images
func (p *Product) ImagePublicIDs() []string {
	var ids []string
	for _, img := range p.Images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}
	return ids
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) Create(ctx context.Context, in NewProduct) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	productID := uuid.New().String()
	now := time.Now()

	event := ProductCreated{
		ProductID:    productID,
		Title:        in.Title,
		SKU:          in.SKU,
		Description:  in.Description,
		Category:     in.Category,
		Purity:       in.Purity,
		Weight:       in.Weight,
		PricePerGram: in.PricePerGram,
		Images:       in.Images,
		CreatedAt:    now,
	}

	stored, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductCreated, event)
	if err != nil {
		return nil, err
	}

	return &Product{
		ID:           productID,
		Title:        in.Title,
		SKU:          in.SKU,
		Description:  in.Description,
		Category:     in.Category,
		Purity:       in.Purity,
		Weight:       in.Weight,
		PricePerGram: in.PricePerGram,
		Images:       in.Images,
		Version:      stored.Version,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Load rebuilds a live product from its events
func (s *Service) Load(productID string) (*Product, error) {
	p, found, err := aggregate.Load(s.eventStore, productID, func() *Product { return &Product{} })
	if err != nil {
		return nil, err
	}
	if !found || p.IsDeleted {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, productID string, in NewProduct) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.Load(productID)
	if err != nil {
		return nil, err
	}

	event := ProductUpdated{
		ProductID:    productID,
		Title:        in.Title,
		SKU:          in.SKU,
		Description:  in.Description,
		Category:     in.Category,
		Purity:       in.Purity,
		Weight:       in.Weight,
		PricePerGram: in.PricePerGram,
		Images:       in.Images,
		UpdatedAt:    time.Now(),
	}

	stored, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductUpdated, event)
	if err != nil {
		return nil, err
	}
	if err := current.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	current, err := s.Load(productID)
	if err != nil {
		return err
	}

	event := ProductDeleted{
		ProductID:      productID,
		ImagePublicIDs: current.ImagePublicIDs(),
		DeletedAt:      time.Now(),
	}

	_, err = s.eventStore.Append(ctx, productID, AggregateType, EventProductDeleted, event)
	return err
}
