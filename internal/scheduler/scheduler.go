// Package scheduler drives the runner on a fixed interval for
// deployments without an external cron.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/api"
)

// Scheduler ticks the runner until the context finishes.
type Scheduler struct {
	runner   api.RunTrigger
	interval time.Duration
	logger   *zap.Logger
}

// New creates a Scheduler. A non-positive interval disables it.
func New(runner api.RunTrigger, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks, invoking the runner once per interval until the context
// is canceled. Run errors are logged and the ticker keeps going: the
// next poll retries naturally.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("internal scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("internal scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.runner.Run(ctx); err != nil {
				s.logger.Error("scheduled run failed", zap.Error(err))
			}
		}
	}
}
