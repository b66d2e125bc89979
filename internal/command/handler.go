package command

import (
	"context"
	"fmt"

	"github.com/example/lastara-storefront/internal/captcha"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"go.uber.org/zap"
)

type Handler struct {
	productSvc      *product.Service
	slideSvc        *slide.Service
	subscriptionSvc *subscription.Service
	operatorSvc     *operator.Service
	verifier        captcha.Verifier
	readStore       store.ReadStoreInterface
	logger          *zap.Logger
}

func NewHandler(
	productSvc *product.Service,
	slideSvc *slide.Service,
	subscriptionSvc *subscription.Service,
	operatorSvc *operator.Service,
	verifier captcha.Verifier,
	readStore store.ReadStoreInterface,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		productSvc:      productSvc,
		slideSvc:        slideSvc,
		subscriptionSvc: subscriptionSvc,
		operatorSvc:     operatorSvc,
		verifier:        verifier,
		readStore:       readStore,
		logger:          logger.Named("command"),
	}
}

// CreateProduct creates a new product (read store is updated by the projector)
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	p, err := h.productSvc.Create(ctx, cmd.NewProduct)
	if err != nil {
		return nil, err
	}
	h.logger.Info("product created", zap.String("product_id", p.ID), zap.String("title", p.Title))
	return p, nil
}

// UpdateProduct replaces a product's editable fields
func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) (*product.Product, error) {
	return h.productSvc.Update(ctx, cmd.ProductID, cmd.NewProduct)
}

// DeleteProduct deletes a product; the notifier removes its CDN images
func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	if err := h.productSvc.Delete(ctx, cmd.ProductID); err != nil {
		return err
	}
	h.logger.Info("product deleted", zap.String("product_id", cmd.ProductID))
	return nil
}

func (h *Handler) CreateSlide(ctx context.Context, cmd CreateSlide) (*slide.Slide, error) {
	return h.slideSvc.Create(ctx, cmd.NewSlide)
}

func (h *Handler) DeleteSlide(ctx context.Context, cmd DeleteSlide) error {
	return h.slideSvc.Delete(ctx, cmd.SlideID)
}

// Subscribe validates the phone, verifies the captcha token and records the subscription
func (h *Handler) Subscribe(ctx context.Context, cmd Subscribe) (*subscription.Subscription, error) {
	// Format errors are reported before spending a siteverify round-trip
	phone, err := subscription.ValidatePhone(cmd.Phone)
	if err != nil {
		return nil, err
	}

	if err := h.verifier.Verify(ctx, cmd.RecaptchaToken, cmd.RemoteIP); err != nil {
		return nil, err
	}

	// The read store catches subscriptions imported before the phone-keyed aggregate existed
	if _, exists, err := h.readStore.GetSubscriptionByPhone(phone); err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	} else if exists {
		return nil, subscription.ErrAlreadySubscribed
	}

	sub, err := h.subscriptionSvc.Subscribe(ctx, phone, cmd.Source)
	if err != nil {
		return nil, err
	}
	h.logger.Info("newsletter subscription", zap.String("subscription_id", sub.ID), zap.String("source", sub.Source))
	return sub, nil
}

// SeedOperator registers the first operator unless one with that email already exists.
// It reports whether a new operator was created.
func (h *Handler) SeedOperator(ctx context.Context, cmd SeedOperator) (bool, error) {
	email := operator.NormalizeEmail(cmd.Email)
	if email == "" {
		return false, operator.ErrInvalidEmail
	}

	if _, exists, err := h.readStore.GetOperatorByEmail(email); err != nil {
		return false, err
	} else if exists {
		return false, nil
	}

	name := cmd.Name
	if name == "" {
		name = "Administrator"
	}
	op, err := h.operatorSvc.Register(ctx, email, cmd.Password, name)
	if err != nil {
		return false, err
	}
	h.logger.Info("operator seeded", zap.String("operator_id", op.ID), zap.String("email", op.Email))
	return true, nil
}
