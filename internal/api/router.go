// Package api provides the HTTP API for PawTrail.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/api/handler"
	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/claim"
	"github.com/pawtrail/pawtrail/internal/device"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
	"github.com/pawtrail/pawtrail/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	AuthService       *auth.Service
	DeviceRegistry    *device.Registry
	NotificationStore *notification.Store
	AlertService      *alert.Service
	ClaimService      *claim.Service
	UserService       *user.Service
	DB                handler.Pinger
	TransportRegistry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pawtrail-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.TransportRegistry)
	deviceHandler := handler.NewDeviceHandler(cfg.DeviceRegistry)
	notificationHandler := handler.NewNotificationHandler(cfg.NotificationStore)
	alertHandler := handler.NewAlertHandler(cfg.AlertService)
	claimHandler := handler.NewClaimHandler(cfg.ClaimService)
	socialHandler := handler.NewSocialHandler(cfg.UserService)

	authMiddleware := middleware.Auth(cfg.AuthService)

	// Rate limit tiers: alert creation triggers fan-out work, so it sits
	// in the stricter bucket.
	writeRateLimit := middleware.RateLimitByUser(middleware.WriteRateLimit)
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)
	publicRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Me endpoints (authenticated)
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)

			// Devices (push endpoint lifecycle)
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.ListDevices)
				r.Post("/", deviceHandler.RegisterDevice)
				r.Delete("/{token}", deviceHandler.UnregisterDevice)
			})

			// Notification feed
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListNotifications)
				r.Delete("/", notificationHandler.DeleteAllNotifications)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read-all", notificationHandler.MarkAllRead)
				r.Route("/{notificationId}", func(r chi.Router) {
					r.Post("/read", notificationHandler.MarkRead)
					r.Delete("/", notificationHandler.DeleteNotification)
				})
			})
		})

		// Alerts
		r.Route("/alerts", func(r chi.Router) {
			r.With(publicRateLimit).Get("/nearby", alertHandler.ListNearby)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.With(writeRateLimit).Post("/", alertHandler.CreateAlert)
				r.Route("/{alertId}", func(r chi.Router) {
					r.Get("/", alertHandler.GetAlert)
					r.With(writeRateLimit).Post("/resolve", alertHandler.ResolveAlert)
					r.Get("/claims", claimHandler.ListClaims)
					r.With(writeRateLimit).Post("/claims", claimHandler.CreateClaim)
				})
			})
		})

		// Claim decisions
		r.Route("/claims/{claimId}", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(writeRateLimit)
			r.Post("/accept", claimHandler.AcceptClaim)
			r.Post("/reject", claimHandler.RejectClaim)
		})

		// Follow graph
		r.Route("/users/{userId}/follow", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Post("/", socialHandler.Follow)
			r.Delete("/", socialHandler.Unfollow)
		})
	})

	return r
}
