package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurger removes operator sessions that expired before a point in time
type SessionPurger interface {
	DeleteExpiredSessions(before time.Time) (int64, error)
}

// Job is a named unit of periodic work
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs maintenance jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("maintenance"),
	}
}

// Register adds a job; the schedule uses standard five-field cron syntax or descriptors like @hourly
func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name, err)
	}
	s.logger.Info("job registered", zap.String("job", job.Name), zap.String("schedule", job.Schedule))
	return nil
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// PurgeExpiredSessions deletes every session whose expiry is before now
func PurgeExpiredSessions(purger SessionPurger, now func() time.Time, logger *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := purger.DeleteExpiredSessions(now())
		if err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}
		if n > 0 {
			logger.Info("expired sessions purged", zap.Int64("count", n))
		}
		return nil
	}
}

// SessionPurgeJob is the job cmd/api registers on SESSION_PURGE_SCHEDULE
func SessionPurgeJob(schedule string, purger SessionPurger, logger *zap.Logger) Job {
	return Job{
		Name:     "purge-expired-sessions",
		Schedule: schedule,
		Run:      PurgeExpiredSessions(purger, time.Now, logger),
	}
}
