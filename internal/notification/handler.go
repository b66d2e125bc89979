package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/email"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/media"
	"go.uber.org/zap"
)

// AlertSender delivers subscriber alerts; *email.Service implements it
type AlertSender interface {
	SendSubscriberAlert(to string, alert email.SubscriberAlert) error
}

// Handler reacts to events with side effects outside the event store:
// CDN cleanup after deletes and shop alerts for new subscribers.
type Handler struct {
	destroyer   media.Destroyer
	alerts      AlertSender
	notifyEmail string
	logger      *zap.Logger
}

// NewHandler creates a new notification handler. An empty notifyEmail disables alerts.
func NewHandler(destroyer media.Destroyer, alerts AlertSender, notifyEmail string, logger *zap.Logger) *Handler {
	return &Handler{
		destroyer:   destroyer,
		alerts:      alerts,
		notifyEmail: notifyEmail,
		logger:      logger.Named("notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("failed to unmarshal event", zap.Error(err))
		return err
	}

	switch event.EventType {
	case product.EventProductDeleted:
		return h.handleProductDeleted(ctx, event)
	case slide.EventSlideDeleted:
		return h.handleSlideDeleted(ctx, event)
	case subscription.EventSubscriptionCreated:
		return h.handleSubscriptionCreated(event)
	}
	return nil
}

func (h *Handler) handleProductDeleted(ctx context.Context, event store.Event) error {
	var e product.ProductDeleted
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("failed to decode ProductDeleted: %w", err)
	}
	h.destroyImages(ctx, e.ProductID, e.ImagePublicIDs)
	return nil
}

func (h *Handler) handleSlideDeleted(ctx context.Context, event store.Event) error {
	var e slide.SlideDeleted
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("failed to decode SlideDeleted: %w", err)
	}
	if e.ImagePublicID != "" {
		h.destroyImages(ctx, e.SlideID, []string{e.ImagePublicID})
	}
	return nil
}

// destroyImages attempts every image; failures are logged and not retried
func (h *Handler) destroyImages(ctx context.Context, ownerID string, publicIDs []string) {
	for _, id := range publicIDs {
		if err := h.destroyer.Destroy(ctx, id); err != nil {
			h.logger.Warn("failed to destroy image",
				zap.String("owner_id", ownerID),
				zap.String("public_id", id),
				zap.Error(err))
			continue
		}
		h.logger.Info("image destroyed", zap.String("owner_id", ownerID), zap.String("public_id", id))
	}
}

func (h *Handler) handleSubscriptionCreated(event store.Event) error {
	if h.notifyEmail == "" {
		return nil
	}

	var e subscription.SubscriptionCreated
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("failed to decode SubscriptionCreated: %w", err)
	}

	alert := email.SubscriberAlert{Phone: e.Phone, Source: e.Source, SubscribedAt: e.CreatedAt}
	if err := h.alerts.SendSubscriberAlert(h.notifyEmail, alert); err != nil {
		h.logger.Error("failed to send subscriber alert",
			zap.String("subscription_id", e.SubscriptionID),
			zap.Error(err))
		return err
	}

	h.logger.Info("subscriber alert sent", zap.String("subscription_id", e.SubscriptionID))
	return nil
}
