package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name    string
	err     error
	panics  bool
	runs    int
	sawDead bool
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	if _, ok := ctx.Deadline(); ok {
		t.sawDead = true
	}
	if t.panics {
		panic("nil student")
	}
	return t.err
}

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	return registry
}

func TestRunOnceRunsEveryJobAndReportsFailures(t *testing.T) {
	expiry := &testJob{name: "leave-expiry", err: errors.New("db down")}
	cleanup := &testJob{name: "notification-cleanup"}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, expiry, cleanup),
		Lock:     lock,
	})
	require.NoError(t, err)

	err = service.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leave-expiry")
	assert.NotContains(t, err.Error(), "notification-cleanup")

	assert.Equal(t, 1, expiry.runs)
	assert.Equal(t, 1, cleanup.runs, "a failing job must not stop the rest of the cycle")
	assert.True(t, cleanup.sawDead, "jobs run under a deadline")
	assert.Equal(t, 1, lock.releases)
}

func TestRunOnceIsolatesPanickingJob(t *testing.T) {
	bad := &testJob{name: "leave-expiry", panics: true}
	good := &testJob{name: "notification-cleanup"}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, bad, good),
		Lock:     &fakeLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	err = service.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, 1, good.runs)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	series := 0
	for _, mf := range mfs {
		if mf.GetName() == "hostelhub_cron_job_runs_total" {
			series = len(mf.GetMetric())
		}
	}
	assert.Equal(t, 2, series, "expected a failure series and a success series")
}

type busyLock struct{}

func (busyLock) Acquire(context.Context) (bool, error) { return false, nil }
func (busyLock) Release(context.Context) error         { return nil }

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "leave-expiry"}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, job),
		Lock:     busyLock{},
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

type brokenLock struct{}

func (brokenLock) Acquire(context.Context) (bool, error) { return false, errors.New("redis down") }
func (brokenLock) Release(context.Context) error         { return nil }

func TestServiceReportsLockErrors(t *testing.T) {
	job := &testJob{name: "leave-expiry"}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, job),
		Lock:     brokenLock{},
	})
	require.NoError(t, err)

	assert.ErrorContains(t, service.RunOnce(context.Background()), "lock acquire")
	assert.Zero(t, job.runs)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "leave-expiry"}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, job),
		Lock:     &fakeLock{},
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServiceRequiresLoggerAndLock(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop()})
	assert.Error(t, err)
}

type leasedLock struct {
	fakeLock
	extends int
	loseAt  int
}

func (l *leasedLock) Extend(context.Context) error {
	l.extends++
	if l.extends == l.loseAt {
		return ErrLockLost
	}
	return nil
}

func TestRunOnceStopsWhenLeaseIsLost(t *testing.T) {
	expiry := &testJob{name: "leave-expiry"}
	cleanup := &testJob{name: "notification-cleanup"}
	lock := &leasedLock{loseAt: 1}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, expiry, cleanup),
		Lock:     lock,
	})
	require.NoError(t, err)

	err = service.RunOnce(context.Background())
	require.ErrorIs(t, err, ErrLockLost)
	assert.Equal(t, 1, expiry.runs)
	assert.Equal(t, 0, cleanup.runs)
	assert.Equal(t, 1, lock.releases)
}

func TestRunOnceExtendsLeaseAfterEachJob(t *testing.T) {
	lock := &leasedLock{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, &testJob{name: "leave-expiry"}, &testJob{name: "notification-cleanup"}),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Equal(t, 2, lock.extends)
}
