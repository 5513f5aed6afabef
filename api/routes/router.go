package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hostelhub/hostelhub-backend/api/controllers"
	"github.com/hostelhub/hostelhub-backend/api/middleware"
	"github.com/hostelhub/hostelhub-backend/internal/auth"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/internal/notifications"
	"github.com/hostelhub/hostelhub-backend/internal/students"
	"github.com/hostelhub/hostelhub-backend/pkg/auth/session"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/metrics"
	"github.com/hostelhub/hostelhub-backend/pkg/redis"
)

// Dependencies is everything the HTTP surface needs. Nil services produce
// handlers that answer with an internal error instead of panicking.
type Dependencies struct {
	DB                   db.Pinger
	Redis                *redis.Client
	Sessions             session.AccessSessionChecker
	Gatherer             prometheus.Gatherer
	HTTPMetrics          *metrics.HTTPMetrics
	AuthService          auth.Service
	LeaveService         leave.Service
	StudentsService      students.Service
	NotificationsService notifications.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginLimit := middleware.LoginRateLimit(cfg.AuthRateLimit, nil, logg)
	submitLimit := middleware.SubmitRateLimit(cfg.AuthRateLimit, nil, logg)
	var cache db.Pinger
	if deps.Redis != nil {
		loginLimit = middleware.LoginRateLimit(cfg.AuthRateLimit, deps.Redis, logg)
		submitLimit = middleware.SubmitRateLimit(cfg.AuthRateLimit, deps.Redis, logg)
		cache = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, cache))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/leave-requests", func(r chi.Router) {
			r.Get("/", controllers.ListLeaveRequests(deps.LeaveService, logg))
			r.With(submitLimit).Post("/", controllers.SubmitLeaveRequest(deps.LeaveService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireReviewer(logg))
				r.Get("/statistics", controllers.LeaveStatistics(deps.LeaveService, logg))
				r.Post("/bulk-approve", controllers.BulkApproveLeaveRequests(deps.LeaveService, logg))
				r.Post("/bulk-reject", controllers.BulkRejectLeaveRequests(deps.LeaveService, logg))
				r.Post("/{requestId}/approve", controllers.ApproveLeaveRequest(deps.LeaveService, logg))
				r.Post("/{requestId}/reject", controllers.RejectLeaveRequest(deps.LeaveService, logg))
			})

			r.Get("/{requestId}", controllers.GetLeaveRequest(deps.LeaveService, logg))
		})

		r.Route("/students", func(r chi.Router) {
			r.Use(middleware.RequireReviewer(logg))
			r.Get("/", controllers.ListStudents(deps.StudentsService, logg))
			r.Post("/", controllers.CreateStudent(deps.StudentsService, logg))
			r.Get("/{studentId}", controllers.GetStudent(deps.StudentsService, logg))
			r.Put("/{studentId}", controllers.UpdateStudent(deps.StudentsService, logg))
			r.Delete("/{studentId}", controllers.DeleteStudent(deps.StudentsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.UserRoleStudent))
			r.Get("/", controllers.ListNotifications(deps.NotificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationsService, logg))
		})
	})

	return r
}
