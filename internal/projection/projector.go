package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/lastara-storefront/internal/cache"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/readmodel"
	"go.uber.org/zap"
)

// Projector folds domain events into read models
type Projector struct {
	readStore store.ReadStoreInterface
	cache     cache.ListingCache
	logger    *zap.Logger
}

func NewProjector(readStore store.ReadStoreInterface, listingCache cache.ListingCache, logger *zap.Logger) *Projector {
	if listingCache == nil {
		listingCache = cache.NopCache{}
	}
	return &Projector{
		readStore: readStore,
		cache:     listingCache,
		logger:    logger.Named("projector"),
	}
}

// HandleEvent is the Kafka message handler
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	return p.Apply(ctx, event)
}

// Publish lets the projector stand in for the Kafka producer, projecting each
// appended event synchronously (PROJECTION_MODE=inline).
func (p *Projector) Publish(ctx context.Context, key string, event any) error {
	e, ok := event.(store.Event)
	if !ok {
		return fmt.Errorf("projector cannot publish %T", event)
	}
	return p.Apply(ctx, e)
}

// Replay applies events in order, used to rebuild read models on start
func (p *Projector) Replay(ctx context.Context, events []store.Event) error {
	for _, event := range events {
		if err := p.Apply(ctx, event); err != nil {
			return fmt.Errorf("replay stopped at event %s: %w", event.ID, err)
		}
	}
	p.logger.Info("replay complete", zap.Int("events", len(events)))
	return nil
}

// Apply projects one event
func (p *Projector) Apply(ctx context.Context, event store.Event) error {
	p.logger.Debug("received event",
		zap.String("event_type", event.EventType),
		zap.String("aggregate_type", event.AggregateType),
		zap.String("aggregate_id", event.AggregateID))

	var (
		err     error
		listing string
	)
	switch event.AggregateType {
	case product.AggregateType:
		listing = cache.KeyProducts
		err = p.handleProductEvent(event)
	case slide.AggregateType:
		listing = cache.KeySlides
		err = p.handleSlideEvent(event)
	case subscription.AggregateType:
		listing = cache.KeySubscriptions
		err = p.handleSubscriptionEvent(event)
	case operator.AggregateType:
		err = p.handleOperatorEvent(event)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", event.EventType, err)
	}

	if listing != "" {
		if err := p.cache.Invalidate(ctx, listing); err != nil {
			p.logger.Warn("cache invalidation failed", zap.String("key", listing), zap.Error(err))
		}
	}
	return nil
}

func productImages(images []product.Image) []readmodel.ImageReadModel {
	out := make([]readmodel.ImageReadModel, 0, len(images))
	for _, img := range images {
		out = append(out, readmodel.ImageReadModel{URL: img.URL, PublicID: img.PublicID})
	}
	return out
}

func (p *Projector) handleProductEvent(event store.Event) error {
	switch event.EventType {
	case product.EventProductCreated:
		var e product.ProductCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(readmodel.CollectionProducts, e.ProductID, &readmodel.ProductReadModel{
			ID:           e.ProductID,
			Title:        e.Title,
			SKU:          e.SKU,
			Description:  e.Description,
			Category:     e.Category,
			Purity:       e.Purity,
			Weight:       e.Weight,
			PricePerGram: e.PricePerGram,
			Images:       productImages(e.Images),
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case product.EventProductUpdated:
		var e product.ProductUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		found, err := p.readStore.Update(readmodel.CollectionProducts, e.ProductID, func(current any) any {
			prod := *current.(*readmodel.ProductReadModel)
			prod.Title = e.Title
			prod.SKU = e.SKU
			prod.Description = e.Description
			prod.Category = e.Category
			prod.Purity = e.Purity
			prod.Weight = e.Weight
			prod.PricePerGram = e.PricePerGram
			prod.Images = productImages(e.Images)
			prod.UpdatedAt = e.UpdatedAt
			return &prod
		})
		if err == nil && !found {
			p.logger.Warn("update for unknown product", zap.String("product_id", e.ProductID))
		}
		return err

	case product.EventProductDeleted:
		var e product.ProductDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Delete(readmodel.CollectionProducts, e.ProductID)
	}
	return nil
}

func (p *Projector) handleSlideEvent(event store.Event) error {
	switch event.EventType {
	case slide.EventSlideCreated:
		var e slide.SlideCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(readmodel.CollectionSlides, e.SlideID, &readmodel.SlideReadModel{
			ID:         e.SlideID,
			Title:      e.Title,
			Subtitle:   e.Subtitle,
			ButtonText: e.ButtonText,
			ButtonLink: e.ButtonLink,
			Image:      readmodel.ImageReadModel{URL: e.Image.URL, PublicID: e.Image.PublicID},
			CreatedAt:  e.CreatedAt,
		})

	case slide.EventSlideDeleted:
		var e slide.SlideDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Delete(readmodel.CollectionSlides, e.SlideID)
	}
	return nil
}

func (p *Projector) handleSubscriptionEvent(event store.Event) error {
	if event.EventType != subscription.EventSubscriptionCreated {
		return nil
	}
	var e subscription.SubscriptionCreated
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return err
	}
	return p.readStore.Set(readmodel.CollectionSubscriptions, e.SubscriptionID, &readmodel.SubscriptionReadModel{
		ID:        e.SubscriptionID,
		Phone:     e.Phone,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
	})
}

func (p *Projector) handleOperatorEvent(event store.Event) error {
	switch event.EventType {
	case operator.EventOperatorRegistered:
		var e operator.OperatorRegistered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(readmodel.CollectionOperators, e.OperatorID, &readmodel.OperatorReadModel{
			ID:           e.OperatorID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         e.Role,
			IsActive:     true,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case operator.EventOperatorPasswordChanged:
		var e operator.OperatorPasswordChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(readmodel.CollectionOperators, e.OperatorID, func(current any) any {
			op := *current.(*readmodel.OperatorReadModel)
			op.PasswordHash = e.PasswordHash
			op.UpdatedAt = e.ChangedAt
			return &op
		})
		return err

	case operator.EventOperatorLoggedIn:
		var e operator.OperatorLoggedIn
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if e.SessionID != "" {
			if err := p.readStore.Set(readmodel.CollectionSessions, e.SessionID, &readmodel.SessionReadModel{
				ID:               e.SessionID,
				OperatorID:       e.OperatorID,
				RefreshTokenHash: e.RefreshTokenHash,
				ExpiresAt:        e.ExpiresAt,
				CreatedAt:        e.LoggedAt,
				IPAddress:        e.IPAddress,
				UserAgent:        e.UserAgent,
			}); err != nil {
				return err
			}
		}
		_, err := p.readStore.Update(readmodel.CollectionOperators, e.OperatorID, func(current any) any {
			op := *current.(*readmodel.OperatorReadModel)
			loggedAt := e.LoggedAt
			op.LastLoginAt = &loggedAt
			return &op
		})
		return err

	case operator.EventOperatorLoggedOut:
		var e operator.OperatorLoggedOut
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if e.SessionID == "" {
			return p.readStore.DeleteSessionsByOperator(e.OperatorID)
		}
		return p.readStore.Delete(readmodel.CollectionSessions, e.SessionID)
	}
	return nil
}
