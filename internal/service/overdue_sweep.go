package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const overdueLockName = "overdue-sweep"

type overdueUpdater interface {
	UpdateOverdueStatus(ctx context.Context) (int64, error)
}

type sweepLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error)
}

type sweepRecorder interface {
	RecordOverdueFlipped(n int64)
}

// OverdueSweep is the scheduled job that flips past-due loans to overdue.
type OverdueSweep struct {
	borrows overdueUpdater
	locker  sweepLocker
	ttl     time.Duration
	logger  *zap.Logger
	metrics sweepRecorder
}

// NewOverdueSweep builds the sweep. A nil locker runs it unguarded.
func NewOverdueSweep(borrows overdueUpdater, locker sweepLocker, ttl time.Duration, logger *zap.Logger) *OverdueSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OverdueSweep{borrows: borrows, locker: locker, ttl: ttl, logger: logger}
}

// WithMetrics attaches a recorder for flipped rows.
func (s *OverdueSweep) WithMetrics(recorder sweepRecorder) *OverdueSweep {
	s.metrics = recorder
	return s
}

// Run performs one sweep, skipping it when another replica holds the lock.
func (s *OverdueSweep) Run(ctx context.Context) error {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, overdueLockName, s.ttl)
		if err != nil {
			s.logger.Warn("overdue sweep lock unavailable, running unguarded", zap.Error(err))
		} else if !ok {
			s.logger.Debug("overdue sweep held by another instance")
			return nil
		} else {
			defer release()
		}
	}

	flipped, err := s.borrows.UpdateOverdueStatus(ctx)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordOverdueFlipped(flipped)
	}
	s.logger.Info("overdue sweep finished", zap.Int64("flipped", flipped))
	return nil
}
