// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BoardSweeper is the part of the board registry the sweep job needs.
type BoardSweeper interface {
	SweepIdle(maxIdle time.Duration) int
}

// ChangePruner is the part of the schedule change store the retention job
// needs.
type ChangePruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// BoardSweepJob destroys calendar boards whose browser stopped polling and
// never sent a close (closed tab, crashed browser, lost network).
func BoardSweepJob(boards BoardSweeper, maxIdle, interval time.Duration) Job {
	if interval <= 0 {
		interval = time.Minute
	}
	return Job{
		Name:     "board-sweep",
		Interval: interval,
		Delayed:  true,
		Run: func(ctx context.Context) error {
			boards.SweepIdle(maxIdle)
			return nil
		},
	}
}

// ScheduleRetentionJob removes schedule change records older than retention.
func ScheduleRetentionJob(store ChangePruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "schedule-retention",
		Interval: 6 * time.Hour,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			deleted, err := store.DeleteBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned schedule history",
					zap.Int64("deleted", deleted),
					zap.Time("before", cutoff))
			}
			return nil
		},
	}
}
