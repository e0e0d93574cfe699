package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/clinicdesk/internal/adapter/http/handler"
	"github.com/iho/clinicdesk/internal/adapter/http/middleware"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ShiftHandler       *handler.ShiftHandler
	TransactionHandler *handler.TransactionHandler
	ReportHandler      *handler.ReportHandler
	HealthHandler      *handler.HealthHandler

	// IdempotencyStore enables response replay on the refund route.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// TokenVerifier enables bearer authentication on ledger routes.
	TokenVerifier middleware.TokenVerifier

	RateLimiter    *middleware.RateLimiter
	Logger         *zerolog.Logger
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Public endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Ledger
	r.Group(func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.Authenticate(cfg.TokenVerifier))
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleOwner, domain.RoleCashier))
		}

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/open", cfg.ShiftHandler.Open)
			r.Get("/active", cfg.ShiftHandler.Active)
			r.Post("/close", cfg.ShiftHandler.Close)
			r.Get("/{id}", cfg.ShiftHandler.Get)
			r.Get("/{id}/transactions", cfg.ShiftHandler.ListTransactions)
			r.Get("/{id}/verify", cfg.ShiftHandler.Verify)
		})

		r.Post("/transactions", cfg.TransactionHandler.Create)
		r.Get("/transactions/{id}", cfg.TransactionHandler.Get)

		r.Group(func(r chi.Router) {
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}
			r.Post("/refund/{id}", cfg.TransactionHandler.Refund)
		})

		r.Get("/reports/{type}", cfg.ReportHandler.Get)
	})

	return r
}
