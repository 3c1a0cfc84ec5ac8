package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"mercator-hq/confkit/pkg/telemetry/logging"
)

// Reloader is implemented by *config.Config.
type Reloader interface {
	Reload(ctx context.Context) error
}

// SecretRefresher is implemented by *secrets.Manager.
type SecretRefresher interface {
	Refresh(ctx context.Context) error
}

// Recorder receives refresh outcomes.
type Recorder interface {
	RecordRefresh(err error)
}

// Scheduler runs Reload on a cron schedule.
type Scheduler struct {
	target   Reloader
	schedule string
	secrets  SecretRefresher
	metrics  Recorder

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every run.
func WithMetrics(r Recorder) Option {
	return func(s *Scheduler) { s.metrics = r }
}

// WithSecrets refreshes secret providers before each reload so rotated
// keys and secret files are picked up.
func WithSecrets(r SecretRefresher) Option {
	return func(s *Scheduler) { s.secrets = r }
}

// NewScheduler creates a scheduler for target.
func NewScheduler(target Reloader, schedule string, opts ...Option) *Scheduler {
	s := &Scheduler{
		target:   target,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "refresh.scheduler")
	return s
}

// ValidateSchedule reports whether schedule is a valid cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Start schedules the refresh job. An empty schedule does nothing.
// Cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" {
		s.logger.Info("refresh schedule not configured, skipping scheduler")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		_ = s.RunNow(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("refresh scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow performs one refresh: secret providers first, then the reload.
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	start := time.Now()

	err := s.run(ctx)
	if s.metrics != nil {
		s.metrics.RecordRefresh(err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "scheduled refresh completed", "duration", time.Since(start))
	return nil
}

func (s *Scheduler) run(ctx context.Context) error {
	if s.secrets != nil {
		if err := s.secrets.Refresh(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh secrets", "error", err)
		}
	}
	return s.target.Reload(ctx)
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("refresh scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled refresh time, or nil when nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
