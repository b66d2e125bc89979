package projection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/lastara-storefront/internal/cache"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/infrastructure/store/mocks"
	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCache struct {
	cache.NopCache
	invalidated []string
	err         error
}

func (c *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	c.invalidated = append(c.invalidated, keys...)
	return c.err
}

func newTestProjector() (*Projector, *mocks.MockReadStore, *recordingCache) {
	readStore := mocks.NewMockReadStore()
	c := &recordingCache{}
	projector := NewProjector(readStore, c, zap.NewNop())
	return projector, readStore, c
}

func makeEvent(aggregateType, eventType string, data any) store.Event {
	jsonData, _ := json.Marshal(data)
	return store.Event{
		ID:            "event-123",
		AggregateID:   "agg-123",
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
	}
}

func encode(event store.Event) []byte {
	b, _ := json.Marshal(event)
	return b
}

func f64(v float64) *float64 { return &v }

var created = time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)

// ============================================
// Product Event Tests
// ============================================

func TestProjector_HandleProductCreated(t *testing.T) {
	projector, readStore, c := newTestProjector()

	value := encode(makeEvent(product.AggregateType, product.EventProductCreated, product.ProductCreated{
		ProductID:    "prod-123",
		Title:        "Kundan Choker",
		Category:     "Necklaces",
		Purity:       "22K",
		Weight:       f64(32.5),
		PricePerGram: f64(6100),
		Images:       []product.Image{{URL: "https://cdn.example/choker.jpg", PublicID: "lastara/choker"}},
		CreatedAt:    created,
	}))

	require.NoError(t, projector.HandleEvent(context.Background(), []byte("prod-123"), value))

	data, ok := readStore.GetData(readmodel.CollectionProducts, "prod-123")
	require.True(t, ok)
	p := data.(*readmodel.ProductReadModel)
	assert.Equal(t, "Kundan Choker", p.Title)
	assert.Equal(t, 32.5, *p.Weight)
	assert.Equal(t, []readmodel.ImageReadModel{{URL: "https://cdn.example/choker.jpg", PublicID: "lastara/choker"}}, p.Images)
	assert.True(t, created.Equal(p.UpdatedAt))
	assert.Equal(t, []string{cache.KeyProducts}, c.invalidated)
}

func TestProjector_HandleProductUpdated(t *testing.T) {
	projector, readStore, _ := newTestProjector()
	original := &readmodel.ProductReadModel{ID: "prod-123", Title: "Ring", Purity: "18K", CreatedAt: created}
	readStore.SetData(readmodel.CollectionProducts, "prod-123", original)
	updatedAt := created.Add(time.Hour)

	event := makeEvent(product.AggregateType, product.EventProductUpdated, product.ProductUpdated{
		ProductID: "prod-123",
		Title:     "Solitaire Ring",
		Purity:    "22K",
		UpdatedAt: updatedAt,
	})
	require.NoError(t, projector.Apply(context.Background(), event))

	data, _ := readStore.GetData(readmodel.CollectionProducts, "prod-123")
	p := data.(*readmodel.ProductReadModel)
	assert.Equal(t, "Solitaire Ring", p.Title)
	assert.Equal(t, "22K", p.Purity)
	assert.True(t, created.Equal(p.CreatedAt))
	assert.True(t, updatedAt.Equal(p.UpdatedAt))
	assert.Equal(t, "Ring", original.Title, "stored read model is replaced, not mutated")
}

func TestProjector_HandleProductUpdated_Unknown(t *testing.T) {
	projector, readStore, _ := newTestProjector()

	event := makeEvent(product.AggregateType, product.EventProductUpdated, product.ProductUpdated{ProductID: "ghost"})

	require.NoError(t, projector.Apply(context.Background(), event))
	assert.Zero(t, readStore.Count(readmodel.CollectionProducts))
}

func TestProjector_HandleProductDeleted(t *testing.T) {
	projector, readStore, _ := newTestProjector()
	readStore.SetData(readmodel.CollectionProducts, "prod-123", &readmodel.ProductReadModel{ID: "prod-123"})

	event := makeEvent(product.AggregateType, product.EventProductDeleted, product.ProductDeleted{ProductID: "prod-123"})
	require.NoError(t, projector.Apply(context.Background(), event))

	_, ok := readStore.GetData(readmodel.CollectionProducts, "prod-123")
	assert.False(t, ok)
}

// ============================================
// Slide & Subscription Event Tests
// ============================================

func TestProjector_Slides(t *testing.T) {
	projector, readStore, c := newTestProjector()
	ctx := context.Background()

	require.NoError(t, projector.Apply(ctx, makeEvent(slide.AggregateType, slide.EventSlideCreated, slide.SlideCreated{
		SlideID:   "slide-1",
		Title:     "Wedding Season",
		Image:     slide.Image{URL: "https://cdn.example/wedding.jpg", PublicID: "lastara/hero/wedding"},
		CreatedAt: created,
	})))

	data, ok := readStore.GetData(readmodel.CollectionSlides, "slide-1")
	require.True(t, ok)
	assert.Equal(t, "lastara/hero/wedding", data.(*readmodel.SlideReadModel).Image.PublicID)

	require.NoError(t, projector.Apply(ctx, makeEvent(slide.AggregateType, slide.EventSlideDeleted, slide.SlideDeleted{SlideID: "slide-1"})))

	_, ok = readStore.GetData(readmodel.CollectionSlides, "slide-1")
	assert.False(t, ok)
	assert.Equal(t, []string{cache.KeySlides, cache.KeySlides}, c.invalidated)
}

func TestProjector_SubscriptionCreated(t *testing.T) {
	projector, readStore, _ := newTestProjector()

	require.NoError(t, projector.Apply(context.Background(), makeEvent(subscription.AggregateType, subscription.EventSubscriptionCreated, subscription.SubscriptionCreated{
		SubscriptionID: "subscription-9876543210",
		Phone:          "9876543210",
		Source:         "footer",
		CreatedAt:      created,
	})))

	sub, ok, err := readStore.GetSubscriptionByPhone("9876543210")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "subscription-9876543210", sub.ID)
}

// ============================================
// Operator Event Tests
// ============================================

func TestProjector_OperatorLifecycle(t *testing.T) {
	projector, readStore, c := newTestProjector()
	ctx := context.Background()
	loggedAt := created.Add(time.Hour)

	require.NoError(t, projector.Apply(ctx, makeEvent(operator.AggregateType, operator.EventOperatorRegistered, operator.OperatorRegistered{
		OperatorID: "op-1", Email: "owner@lastara.in", PasswordHash: "h1", Name: "Owner", Role: operator.RoleAdmin, CreatedAt: created,
	})))
	require.NoError(t, projector.Apply(ctx, makeEvent(operator.AggregateType, operator.EventOperatorLoggedIn, operator.OperatorLoggedIn{
		OperatorID: "op-1", SessionID: "sess-1", RefreshTokenHash: "rt", ExpiresAt: loggedAt.Add(time.Hour), LoggedAt: loggedAt,
	})))
	require.NoError(t, projector.Apply(ctx, makeEvent(operator.AggregateType, operator.EventOperatorPasswordChanged, operator.OperatorPasswordChanged{
		OperatorID: "op-1", PasswordHash: "h2", ChangedAt: loggedAt,
	})))

	op, ok, err := readStore.GetOperatorByEmail("owner@lastara.in")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "h2", op.PasswordHash)
	assert.True(t, op.IsActive)
	require.NotNil(t, op.LastLoginAt)
	assert.True(t, loggedAt.Equal(*op.LastLoginAt))

	sess, ok := readStore.GetData(readmodel.CollectionSessions, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "rt", sess.(*readmodel.SessionReadModel).RefreshTokenHash)

	require.NoError(t, projector.Apply(ctx, makeEvent(operator.AggregateType, operator.EventOperatorLoggedOut, operator.OperatorLoggedOut{
		OperatorID: "op-1", SessionID: "sess-1",
	})))
	assert.Zero(t, readStore.Count(readmodel.CollectionSessions))
	assert.Empty(t, c.invalidated, "operator events do not touch listing caches")
}

func TestProjector_LogoutEverywhere(t *testing.T) {
	projector, readStore, _ := newTestProjector()
	readStore.SetData(readmodel.CollectionSessions, "a", &readmodel.SessionReadModel{ID: "a", OperatorID: "op-1"})
	readStore.SetData(readmodel.CollectionSessions, "b", &readmodel.SessionReadModel{ID: "b", OperatorID: "op-1"})
	readStore.SetData(readmodel.CollectionSessions, "c", &readmodel.SessionReadModel{ID: "c", OperatorID: "op-2"})

	require.NoError(t, projector.Apply(context.Background(), makeEvent(operator.AggregateType, operator.EventOperatorLoggedOut, operator.OperatorLoggedOut{OperatorID: "op-1"})))

	assert.Equal(t, 1, readStore.Count(readmodel.CollectionSessions))
}

// ============================================
// Transport & Error Tests
// ============================================

func TestProjector_HandleEvent_InvalidJSON(t *testing.T) {
	projector, _, _ := newTestProjector()

	err := projector.HandleEvent(context.Background(), nil, []byte("{not json"))

	assert.Error(t, err)
}

func TestProjector_UnknownAggregateIgnored(t *testing.T) {
	projector, readStore, c := newTestProjector()

	err := projector.Apply(context.Background(), makeEvent("Cart", "ItemAdded", map[string]string{}))

	require.NoError(t, err)
	assert.Empty(t, readStore.SetCalls)
	assert.Empty(t, c.invalidated)
}

func TestProjector_ReadStoreErrorSkipsInvalidation(t *testing.T) {
	projector, readStore, c := newTestProjector()
	readStore.Err = errors.New("db down")

	err := projector.Apply(context.Background(), makeEvent(product.AggregateType, product.EventProductCreated, product.ProductCreated{ProductID: "p"}))

	assert.ErrorContains(t, err, "db down")
	assert.Empty(t, c.invalidated)
}

func TestProjector_CacheErrorDoesNotFailProjection(t *testing.T) {
	projector, readStore, c := newTestProjector()
	c.err = errors.New("redis gone")

	err := projector.Apply(context.Background(), makeEvent(product.AggregateType, product.EventProductCreated, product.ProductCreated{ProductID: "p"}))

	require.NoError(t, err)
	assert.Equal(t, 1, readStore.Count(readmodel.CollectionProducts))
}

func TestProjector_PublishProjectsInline(t *testing.T) {
	readStore := mocks.NewMockReadStore()
	projector := NewProjector(readStore, nil, zap.NewNop())
	eventStore := store.NewEventStore(projector)
	svc := product.NewService(eventStore)

	p, err := svc.Create(context.Background(), product.NewProduct{Title: "Anklet"})
	require.NoError(t, err)

	data, ok := readStore.GetData(readmodel.CollectionProducts, p.ID)
	require.True(t, ok)
	assert.Equal(t, "Anklet", data.(*readmodel.ProductReadModel).Title)
}

func TestProjector_PublishRejectsForeignPayload(t *testing.T) {
	projector, _, _ := newTestProjector()

	err := projector.Publish(context.Background(), "k", "not an event")

	assert.Error(t, err)
}

func TestProjector_Replay(t *testing.T) {
	projector, readStore, _ := newTestProjector()
	events := []store.Event{
		makeEvent(product.AggregateType, product.EventProductCreated, product.ProductCreated{ProductID: "p1", Title: "A"}),
		makeEvent(product.AggregateType, product.EventProductCreated, product.ProductCreated{ProductID: "p2", Title: "B"}),
		makeEvent(product.AggregateType, product.EventProductDeleted, product.ProductDeleted{ProductID: "p1"}),
	}

	require.NoError(t, projector.Replay(context.Background(), events))

	assert.Equal(t, 1, readStore.Count(readmodel.CollectionProducts))
	_, ok := readStore.GetData(readmodel.CollectionProducts, "p2")
	assert.True(t, ok)
}
