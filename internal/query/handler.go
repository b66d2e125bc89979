package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/lastara-storefront/internal/cache"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/readmodel"
	"go.uber.org/zap"
)

type Handler struct {
	readStore store.ReadStoreInterface
	cache     cache.ListingCache
	logger    *zap.Logger
}

func NewHandler(readStore store.ReadStoreInterface, listingCache cache.ListingCache, logger *zap.Logger) *Handler {
	if listingCache == nil {
		listingCache = cache.NopCache{}
	}
	return &Handler{
		readStore: readStore,
		cache:     listingCache,
		logger:    logger.Named("query"),
	}
}

// newestFirst orders by creation time descending; ties fall back to ID so the order is stable
// across stores that do not guarantee iteration order.
func newestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) < id(items[j])
	})
}

// listCached serves key from the cache, falling back to load and populating the cache.
// Cache failures are logged and never fail the request.
func listCached[T any](ctx context.Context, h *Handler, key string, load func() ([]T, error)) ([]T, error) {
	var cached []T
	hit, err := h.cache.Get(ctx, key, &cached)
	if err != nil {
		h.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, key, items); err != nil {
		h.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}

func getAll[T any](rs store.ReadStoreInterface, collection string) ([]*T, error) {
	items, err := rs.GetAll(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	out := make([]*T, 0, len(items))
	for _, item := range items {
		out = append(out, item.(*T))
	}
	return out, nil
}

// Products
func (h *Handler) GetProduct(id string) (*ProductReadModel, bool, error) {
	data, ok, err := h.readStore.Get(readmodel.CollectionProducts, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return data.(*ProductReadModel), true, nil
}

// ListProducts returns every product, newest first
func (h *Handler) ListProducts(ctx context.Context) ([]*ProductReadModel, error) {
	return listCached(ctx, h, cache.KeyProducts, func() ([]*ProductReadModel, error) {
		products, err := getAll[ProductReadModel](h.readStore, readmodel.CollectionProducts)
		if err != nil {
			return nil, err
		}
		newestFirst(products,
			func(p *ProductReadModel) time.Time { return p.CreatedAt },
			func(p *ProductReadModel) string { return p.ID })
		return products, nil
	})
}

// Slides
func (h *Handler) GetSlide(id string) (*SlideReadModel, bool, error) {
	data, ok, err := h.readStore.Get(readmodel.CollectionSlides, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return data.(*SlideReadModel), true, nil
}

// ListSlides returns every hero slide, newest first
func (h *Handler) ListSlides(ctx context.Context) ([]*SlideReadModel, error) {
	return listCached(ctx, h, cache.KeySlides, func() ([]*SlideReadModel, error) {
		slides, err := getAll[SlideReadModel](h.readStore, readmodel.CollectionSlides)
		if err != nil {
			return nil, err
		}
		newestFirst(slides,
			func(s *SlideReadModel) time.Time { return s.CreatedAt },
			func(s *SlideReadModel) string { return s.ID })
		return slides, nil
	})
}

// Subscriptions (operator only, not cached)
func (h *Handler) ListSubscriptions() ([]*SubscriptionReadModel, error) {
	subs, err := getAll[SubscriptionReadModel](h.readStore, readmodel.CollectionSubscriptions)
	if err != nil {
		return nil, err
	}
	newestFirst(subs,
		func(s *SubscriptionReadModel) time.Time { return s.CreatedAt },
		func(s *SubscriptionReadModel) string { return s.ID })
	return subs, nil
}

// Operators
func (h *Handler) GetOperator(id string) (*OperatorReadModel, bool, error) {
	data, ok, err := h.readStore.Get(readmodel.CollectionOperators, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return data.(*OperatorReadModel), true, nil
}

func (h *Handler) GetOperatorByEmail(email string) (*OperatorReadModel, bool, error) {
	return h.readStore.GetOperatorByEmail(email)
}

// Sessions
func (h *Handler) GetSession(id string) (*SessionReadModel, bool, error) {
	data, ok, err := h.readStore.Get(readmodel.CollectionSessions, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return data.(*SessionReadModel), true, nil
}
