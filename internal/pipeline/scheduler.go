package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wibaek/soma-hands-on-2/internal/observability"
)

// Refresher runs one refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context, regions []string) (Result, error)
}

// Scheduler triggers periodic refreshes. At most one schedule is active.
type Scheduler struct {
	refresher Refresher
	regions   []string
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler that refreshes regions on each tick.
func NewScheduler(refresher Refresher, regions []string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		refresher: refresher,
		regions:   regions,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// StartPeriodicRefresh cancels any running schedule, then refreshes every
// interval until ctx ends or StopPeriodicRefresh is called. The first
// refresh happens one interval after the call.
func (s *Scheduler) StartPeriodicRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("refresh interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	ticker := s.clock.NewTicker(interval)
	s.metrics.SchedulerRunning.Set(1)
	s.logger.Info("periodic refresh started", "interval", interval, "regions", len(s.regions))

	go s.loop(loopCtx, ticker, done)
	return nil
}

// StopPeriodicRefresh cancels the active schedule and waits for its loop to
// exit. Safe to call when nothing is running.
func (s *Scheduler) StopPeriodicRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Running reports whether a schedule is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.logger.Info("periodic refresh stopped")
}

func (s *Scheduler) loop(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	defer s.metrics.SchedulerRunning.Set(0)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.refresher.Refresh(ctx, s.regions)
	switch {
	case err == nil:
	case errors.Is(err, ErrRefreshInProgress):
		s.logger.Debug("scheduled refresh skipped, previous refresh still running")
	case errors.Is(err, ErrRefreshCancelled):
		s.logger.Debug("scheduled refresh cancelled", "error", err)
	default:
		s.logger.Warn("scheduled refresh failed", "error", err)
	}
}
