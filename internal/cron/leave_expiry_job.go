package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

type leaveExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (leave.ExpirySummary, error)
}

// LeaveExpiryJobParams configure the pending-leave expiry sweep.
type LeaveExpiryJobParams struct {
	Logger  *logger.Logger
	Expirer leaveExpirer
}

// NewLeaveExpiryJob builds the job that expires pending requests whose end date has passed.
func NewLeaveExpiryJob(params LeaveExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("leave expirer required")
	}
	return &leaveExpiryJob{
		logg:    params.Logger,
		expirer: params.Expirer,
		now:     time.Now,
	}, nil
}

type leaveExpiryJob struct {
	logg    *logger.Logger
	expirer leaveExpirer
	now     func() time.Time
}

func (j *leaveExpiryJob) Name() string { return "leave-expiry" }

func (j *leaveExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	summary, err := j.expirer.ExpireOverdue(ctx, now)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": summary.Scanned,
		"expired": summary.Expired,
		"skipped": summary.Skipped,
	})
	if err != nil {
		return fmt.Errorf("leave expiry: %w", err)
	}
	if summary.Expired == 0 {
		j.logg.Debug(logCtx, "no pending leave requests past their end date")
		return nil
	}
	j.logg.Info(logCtx, "leave expiry sweep complete")
	return nil
}
