package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hostelhub/hostelhub-backend/internal/cron"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/internal/notifications"
	"github.com/hostelhub/hostelhub-backend/internal/students"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/instance"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/metrics"
	"github.com/hostelhub/hostelhub-backend/pkg/migrate"
	"github.com/hostelhub/hostelhub-backend/pkg/pubsub"
	"github.com/hostelhub/hostelhub-backend/pkg/redis"
)

const (
	lockName   = "cron-worker"
	drainGrace = 30 * time.Second
)

func main() {
	once := flag.Bool("once", false, "run a single locked cycle and exit")
	only := flag.String("job", "", "comma separated job names to run (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	studentsRepo := students.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	dispatcherParams := notifications.DispatcherParams{
		Repo:     notificationsRepo,
		Students: studentsRepo,
		Logger:   logg,
	}
	var publisher *pubsub.TopicPublisher
	if cfg.PubSub.NotificationTopic != "" {
		psClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		publisher = psClient.NotificationPublisher()
		dispatcherParams.Publisher = publisher
	}
	dispatcher, err := notifications.NewDispatcher(dispatcherParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	leaveService, err := leave.NewService(leave.ServiceParams{
		Repo:          leave.NewRepository(dbClient.DB()),
		Students:      studentsRepo,
		Notifier:      dispatcher,
		Recorder:      metrics.NewLeaveMetrics(prometheus.DefaultRegisterer),
		Logger:        logg,
		NotifyTimeout: cfg.Leave.NotificationTimeout,
		ExpiryBatch:   cfg.Leave.ExpiryBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create leave service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewLeaveExpiryJob(cron.LeaveExpiryJobParams{Logger: logg, Expirer: leaveService})
	if err != nil {
		logg.Error(context.Background(), "failed to create leave expiry job", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationsRepo,
		Retention:  cfg.Notifications.Retention,
		BatchSize:  cfg.Notifications.CleanupBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(expiryJob, cleanupJob)
	if err == nil && *only != "" {
		registry, err = registry.Select(strings.Split(*only, ",")...)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to build job registry", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
		"once":     *once,
		"jobs":     registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if *once {
		err = service.RunOnce(ctx)
	} else {
		err = service.Run(ctx)
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainGrace)
	defer cancel()
	if waitErr := leaveService.WaitForNotifications(drainCtx); waitErr != nil {
		logg.Warn(logg.WithField(drainCtx, "error", waitErr.Error()), "notifications still in flight at shutdown")
	}
	publisher.Stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
