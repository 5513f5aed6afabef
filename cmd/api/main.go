package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hostelhub/hostelhub-backend/api"
	"github.com/hostelhub/hostelhub-backend/api/routes"
	"github.com/hostelhub/hostelhub-backend/internal/auth"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/internal/notifications"
	"github.com/hostelhub/hostelhub-backend/internal/students"
	"github.com/hostelhub/hostelhub-backend/internal/users"
	"github.com/hostelhub/hostelhub-backend/pkg/auth/session"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/instance"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/metrics"
	"github.com/hostelhub/hostelhub-backend/pkg/migrate"
	"github.com/hostelhub/hostelhub-backend/pkg/pubsub"
	"github.com/hostelhub/hostelhub-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	studentsRepo := students.NewRepository(dbClient.DB())
	studentsService, err := students.NewService(studentsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create students service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

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
		Recorder:      metrics.NewLeaveMetrics(registry),
		Logger:        logg,
		NotifyTimeout: cfg.Leave.NotificationTimeout,
		ExpiryBatch:   cfg.Leave.ExpiryBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create leave service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:                   dbClient,
		Redis:                redisClient,
		Sessions:             sessionManager,
		Gatherer:             registry,
		HTTPMetrics:          metrics.NewHTTPMetrics(registry),
		AuthService:          authService,
		LeaveService:         leaveService,
		StudentsService:      studentsService,
		NotificationsService: notificationsService,
	})

	if err := api.Serve(ctx, api.NewServer(addr, handler), shutdownGrace, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := leaveService.WaitForNotifications(drainCtx); err != nil {
		logg.Warn(logg.WithField(drainCtx, "error", err.Error()), "notifications still in flight at shutdown")
	}
	publisher.Stop()

	logg.Info(ctx, "api server shut down gracefully")
}
