// Package scheduler fires the daily full-catalog rate sweep at a configured
// UTC time of day. Re-triggering a completed day is a per-currency no-op on
// the sync side, and overlapping sweeps are rejected by the orchestrator's
// run lock.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
)

// Scheduler triggers one sweep per day.
type Scheduler struct {
	syncSvc ports.RateSyncSvc
	hour    int
	minute  int
	logger  *slog.Logger
}

// New creates a Scheduler firing daily at scheduleTime ("15:04", UTC).
func New(syncSvc ports.RateSyncSvc, scheduleTime string, logger *slog.Logger) (*Scheduler, error) {
	hour, minute, err := ParseScheduleTime(scheduleTime)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		syncSvc: syncSvc,
		hour:    hour,
		minute:  minute,
		logger:  logger,
	}, nil
}

// ParseScheduleTime validates an "HH:MM" time-of-day string.
func ParseScheduleTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid sync schedule time %q, want HH:MM", apperrors.ErrConfiguration, s)
	}
	return t.Hour(), t.Minute(), nil
}

// Start runs the scheduling loop until ctx is cancelled. Call it in its own
// goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Daily sync scheduler started",
		slog.String("schedule_time", fmt.Sprintf("%02d:%02d UTC", s.hour, s.minute)))

	for {
		next := NextRun(time.Now().UTC(), s.hour, s.minute)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Daily sync scheduler stopped")
			return
		case <-timer.C:
		}

		s.runSweep(ctx)
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	s.logger.Info("Scheduled sweep triggered")
	stats, err := s.syncSvc.SyncAll(ctx, "")
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			s.logger.Warn("Scheduled sweep skipped, previous sweep still running")
			return
		}
		s.logger.Error("Scheduled sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Scheduled sweep completed",
		slog.String("run_id", stats.RunID),
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped))
}

// NextRun returns the next occurrence of (hour, minute) strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
