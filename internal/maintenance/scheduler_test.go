package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/lastara-storefront/internal/infrastructure/store/mocks"
	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

// ============================================
// Session Purge Tests
// ============================================

func TestPurgeExpiredSessions_RemovesOnlyExpired(t *testing.T) {
	readStore := mocks.NewMockReadStore()
	readStore.SetData(readmodel.CollectionSessions, "expired", &readmodel.SessionReadModel{ID: "expired", ExpiresAt: now.Add(-time.Minute)})
	readStore.SetData(readmodel.CollectionSessions, "live", &readmodel.SessionReadModel{ID: "live", ExpiresAt: now.Add(time.Hour)})

	run := PurgeExpiredSessions(readStore, func() time.Time { return now }, zap.NewNop())

	require.NoError(t, run(context.Background()))
	_, expired := readStore.GetData(readmodel.CollectionSessions, "expired")
	_, live := readStore.GetData(readmodel.CollectionSessions, "live")
	assert.False(t, expired)
	assert.True(t, live)
}

func TestPurgeExpiredSessions_StoreError(t *testing.T) {
	readStore := mocks.NewMockReadStore()
	readStore.Err = errors.New("db down")

	err := PurgeExpiredSessions(readStore, time.Now, zap.NewNop())(context.Background())

	assert.ErrorContains(t, err, "db down")
}

func TestPurgeExpiredSessions_CancelledContext(t *testing.T) {
	readStore := mocks.NewMockReadStore()
	readStore.SetData(readmodel.CollectionSessions, "expired", &readmodel.SessionReadModel{ID: "expired", ExpiresAt: now.Add(-time.Minute)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PurgeExpiredSessions(readStore, func() time.Time { return now }, zap.NewNop())(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, readStore.Count(readmodel.CollectionSessions))
}

// ============================================
// Scheduler Tests
// ============================================

func TestScheduler_RegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.Register(Job{Name: "broken", Schedule: "every now and then", Run: func(context.Context) error { return nil }})

	assert.ErrorContains(t, err, "broken")
}

func TestScheduler_RegisterSessionPurgeJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.Register(SessionPurgeJob("@hourly", mocks.NewMockReadStore(), zap.NewNop()))

	assert.NoError(t, err)
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:     "counter",
		Schedule: "@every 1s",
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("logged, not fatal")
		},
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	s.Stop()

	assert.ErrorIs(t, s.ctx.Err(), context.Canceled)
}
