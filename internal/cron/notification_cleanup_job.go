package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

const (
	defaultNotificationRetention = 30 * 24 * time.Hour
	defaultCleanupBatchSize      = 1000
	maxCleanupBatches            = 50
)

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsCleanupRepo
	Retention  time.Duration
	BatchSize  int
}

type notificationsCleanupRepo interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// NewNotificationCleanupJob deletes read inbox rows and parent copies older
// than the retention window. Deletes run in batches; anything left after
// maxCleanupBatches is picked up by the next cycle.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	job := &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: params.Retention,
		batchSize: params.BatchSize,
		now:       time.Now,
	}
	if job.retention <= 0 {
		job.retention = defaultNotificationRetention
	}
	if job.batchSize <= 0 {
		job.batchSize = defaultCleanupBatchSize
	}
	return job, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationsCleanupRepo
	retention time.Duration
	batchSize int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	var (
		total   int64
		batches int
	)
	for batches < maxCleanupBatches {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("notification cleanup interrupted after %d rows: %w", total, err)
		}
		deleted, err := j.repo.DeleteReadOlderThan(ctx, cutoff, j.batchSize)
		if err != nil {
			return fmt.Errorf("notification cleanup after %d rows: %w", total, err)
		}
		batches++
		total += deleted
		if deleted < int64(j.batchSize) {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"batches":      batches,
		"rows_deleted": total,
	})
	if batches == maxCleanupBatches {
		j.logg.Warn(logCtx, "notification cleanup hit batch cap; remaining rows deferred")
		return nil
	}
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
