package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

func TestNotificationCleanupUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	repo := &fakeNotificationRepo{}
	job := newNotificationCleanupJob(t, repo, 0, 0)
	job.now = func() time.Time { return now }
	require.NoError(t, job.Run(context.Background()))
	assert.True(t, repo.cutoffs[0].Equal(now.Add(-defaultNotificationRetention)))
	assert.Equal(t, []int{defaultCleanupBatchSize}, repo.limits)

	repo = &fakeNotificationRepo{}
	job = newNotificationCleanupJob(t, repo, 48*time.Hour, 0)
	job.now = func() time.Time { return now }
	require.NoError(t, job.Run(context.Background()))
	assert.True(t, repo.cutoffs[0].Equal(time.Date(2026, 1, 29, 12, 0, 0, 0, time.UTC)))
}

func TestNotificationCleanupDrainsInBatches(t *testing.T) {
	repo := &fakeNotificationRepo{batches: []int64{10, 10, 3}}
	job := newNotificationCleanupJob(t, repo, time.Hour, 10)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, repo.limits, 3, "a short batch ends the run")
	for _, cutoff := range repo.cutoffs {
		assert.True(t, cutoff.Equal(repo.cutoffs[0]), "cutoff is fixed for the whole run")
	}
}

func TestNotificationCleanupStopsAtBatchCap(t *testing.T) {
	repo := &fakeNotificationRepo{always: 5}
	job := newNotificationCleanupJob(t, repo, time.Hour, 5)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, repo.limits, maxCleanupBatches)
}

func TestNotificationCleanupPropagatesErrors(t *testing.T) {
	repo := &fakeNotificationRepo{batches: []int64{2}, err: errors.New("boom"), failOn: 2}
	job := newNotificationCleanupJob(t, repo, time.Hour, 2)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 rows")
}

func TestNotificationCleanupHonoursCancel(t *testing.T) {
	repo := &fakeNotificationRepo{}
	job := newNotificationCleanupJob(t, repo, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Empty(t, repo.limits)
}

func newNotificationCleanupJob(t *testing.T, repo *fakeNotificationRepo, retention time.Duration, batch int) *notificationCleanupJob {
	t.Helper()
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.Nop(),
		Repository: repo,
		Retention:  retention,
		BatchSize:  batch,
	})
	require.NoError(t, err)
	job, ok := jobIface.(*notificationCleanupJob)
	require.True(t, ok, "expected notificationCleanupJob, got %T", jobIface)
	return job
}

// fakeNotificationRepo returns batches in order, then always (default 0).
type fakeNotificationRepo struct {
	batches []int64
	always  int64
	err     error
	failOn  int
	cutoffs []time.Time
	limits  []int
}

func (f *fakeNotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	f.limits = append(f.limits, limit)
	call := len(f.limits)
	if f.err != nil && call == f.failOn {
		return 0, f.err
	}
	if call <= len(f.batches) {
		return f.batches[call-1], nil
	}
	return f.always, nil
}
