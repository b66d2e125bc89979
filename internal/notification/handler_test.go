package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/email"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDestroyer struct {
	destroyed []string
	failOn    map[string]bool
}

func (f *fakeDestroyer) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	if f.failOn[publicID] {
		return errors.New("cdn unavailable")
	}
	return nil
}

type fakeAlerts struct {
	to     []string
	alerts []email.SubscriberAlert
	err    error
}

func (f *fakeAlerts) SendSubscriberAlert(to string, alert email.SubscriberAlert) error {
	f.to = append(f.to, to)
	f.alerts = append(f.alerts, alert)
	return f.err
}

func encodeEvent(t *testing.T, aggregateType, eventType string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	value, err := json.Marshal(store.Event{
		ID:            "evt-1",
		AggregateID:   "agg-1",
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Timestamp:     time.Now(),
		Version:       1,
	})
	require.NoError(t, err)
	return value
}

func newTestHandler(notifyEmail string) (*Handler, *fakeDestroyer, *fakeAlerts) {
	d := &fakeDestroyer{failOn: map[string]bool{}}
	a := &fakeAlerts{}
	return NewHandler(d, a, notifyEmail, zap.NewNop()), d, a
}

// ============================================
// CDN Cleanup Tests
// ============================================

func TestHandler_ProductDeleted_DestroysEveryImage(t *testing.T) {
	handler, destroyer, _ := newTestHandler("")
	value := encodeEvent(t, product.AggregateType, product.EventProductDeleted, product.ProductDeleted{
		ProductID:      "prod-1",
		ImagePublicIDs: []string{"lastara/a", "lastara/b", "lastara/c"},
	})
	destroyer.failOn["lastara/b"] = true

	err := handler.HandleEvent(context.Background(), []byte("prod-1"), value)

	require.NoError(t, err)
	assert.Equal(t, []string{"lastara/a", "lastara/b", "lastara/c"}, destroyer.destroyed)
}

func TestHandler_SlideDeleted(t *testing.T) {
	handler, destroyer, _ := newTestHandler("")
	value := encodeEvent(t, slide.AggregateType, slide.EventSlideDeleted, slide.SlideDeleted{SlideID: "s1", ImagePublicID: "lastara/hero"})

	require.NoError(t, handler.HandleEvent(context.Background(), nil, value))
	assert.Equal(t, []string{"lastara/hero"}, destroyer.destroyed)
}

func TestHandler_SlideDeleted_WithoutImageHandle(t *testing.T) {
	handler, destroyer, _ := newTestHandler("")
	value := encodeEvent(t, slide.AggregateType, slide.EventSlideDeleted, slide.SlideDeleted{SlideID: "s1"})

	require.NoError(t, handler.HandleEvent(context.Background(), nil, value))
	assert.Empty(t, destroyer.destroyed)
}

// ============================================
// Subscriber Alert Tests
// ============================================

func TestHandler_SubscriptionCreated_SendsAlert(t *testing.T) {
	handler, _, alerts := newTestHandler("owner@lastara.in")
	created := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	value := encodeEvent(t, subscription.AggregateType, subscription.EventSubscriptionCreated, subscription.SubscriptionCreated{
		SubscriptionID: "subscription-9876543210",
		Phone:          "9876543210",
		Source:         "footer",
		CreatedAt:      created,
	})

	require.NoError(t, handler.HandleEvent(context.Background(), nil, value))

	assert.Equal(t, []string{"owner@lastara.in"}, alerts.to)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "9876543210", alerts.alerts[0].Phone)
	assert.Equal(t, "footer", alerts.alerts[0].Source)
	assert.True(t, created.Equal(alerts.alerts[0].SubscribedAt))
}

func TestHandler_SubscriptionCreated_AlertsDisabled(t *testing.T) {
	handler, _, alerts := newTestHandler("")
	value := encodeEvent(t, subscription.AggregateType, subscription.EventSubscriptionCreated, subscription.SubscriptionCreated{Phone: "9876543210"})

	require.NoError(t, handler.HandleEvent(context.Background(), nil, value))
	assert.Empty(t, alerts.alerts)
}

func TestHandler_SubscriptionCreated_SendError(t *testing.T) {
	handler, _, alerts := newTestHandler("owner@lastara.in")
	alerts.err = errors.New("smtp down")
	value := encodeEvent(t, subscription.AggregateType, subscription.EventSubscriptionCreated, subscription.SubscriptionCreated{Phone: "9876543210"})

	err := handler.HandleEvent(context.Background(), nil, value)

	assert.EqualError(t, err, "smtp down")
}

// ============================================
// Other Events
// ============================================

func TestHandler_IgnoresUnrelatedEvents(t *testing.T) {
	handler, destroyer, alerts := newTestHandler("owner@lastara.in")
	value := encodeEvent(t, product.AggregateType, product.EventProductCreated, product.ProductCreated{ProductID: "p1", Title: "Ring"})

	require.NoError(t, handler.HandleEvent(context.Background(), nil, value))
	assert.Empty(t, destroyer.destroyed)
	assert.Empty(t, alerts.alerts)
}

func TestHandler_MalformedMessage(t *testing.T) {
	handler, _, _ := newTestHandler("")
	assert.Error(t, handler.HandleEvent(context.Background(), nil, []byte("{not json")))
}
