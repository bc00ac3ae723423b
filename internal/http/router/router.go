package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/config"
	"github.com/venditio/crm-api/internal/database"
	"github.com/venditio/crm-api/internal/http/handler"
	"github.com/venditio/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/venditio/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	leadHandler         *handler.LeadHandler
	dealHandler         *handler.DealHandler
	quotationHandler    *handler.QuotationHandler
	costSheetHandler    *handler.CostSheetHandler
	documentHandler     *handler.DocumentHandler
	notificationHandler *handler.NotificationHandler
	todoHandler         *handler.TodoHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	leadHandler *handler.LeadHandler,
	dealHandler *handler.DealHandler,
	quotationHandler *handler.QuotationHandler,
	costSheetHandler *handler.CostSheetHandler,
	documentHandler *handler.DocumentHandler,
	notificationHandler *handler.NotificationHandler,
	todoHandler *handler.TodoHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		leadHandler:         leadHandler,
		dealHandler:         dealHandler,
		quotationHandler:    quotationHandler,
		costSheetHandler:    costSheetHandler,
		documentHandler:     documentHandler,
		notificationHandler: notificationHandler,
		todoHandler:         todoHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Get("/{id}", rt.leadHandler.GetByID)
				r.Put("/{id}", rt.leadHandler.Update)
				r.Delete("/{id}", rt.leadHandler.Delete)
				r.Post("/{id}/convert", rt.leadHandler.Convert)
			})

			// Deals
			r.Route("/deals", func(r chi.Router) {
				r.Get("/", rt.dealHandler.List)
				r.Post("/", rt.dealHandler.Create)
				r.Get("/pipeline", rt.dealHandler.PipelineStats)
				r.Get("/{id}", rt.dealHandler.GetByID)
				r.Put("/{id}", rt.dealHandler.Update)
				r.Delete("/{id}", rt.dealHandler.Delete)

				// Cost sheets
				r.Get("/{id}/costsheet", rt.costSheetHandler.GetLatest)
				r.Put("/{id}/costsheet", rt.costSheetHandler.Save)
				r.Get("/{id}/costsheet/versions", rt.costSheetHandler.ListVersions)

				// Documents
				r.Get("/{id}/documents", rt.documentHandler.List)
				r.Post("/{id}/documents", rt.documentHandler.Upload)
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/request", rt.quotationHandler.Request)
				r.Get("/deal/{dealId}", rt.quotationHandler.ListForDeal)
				r.Get("/stats/notifications", rt.notificationHandler.Stats)
				r.Put("/stats/mark-read", rt.notificationHandler.MarkRead)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}", rt.quotationHandler.Update)
				r.Put("/{id}/margin", rt.quotationHandler.SetMargin)
				r.Get("/{id}/pdf", rt.quotationHandler.DownloadPDF)

				// Admin-only workflow operations
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Get("/stats/pending-count", rt.quotationHandler.PendingCount)
					r.Post("/{id}/approve", rt.quotationHandler.Approve)
					r.Post("/{id}/reject", rt.quotationHandler.Reject)
				})
			})

			// Documents (direct access)
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{id}/download", rt.documentHandler.Download)
				r.Delete("/{id}", rt.documentHandler.Delete)
			})

			// Todos
			r.Route("/todos", func(r chi.Router) {
				r.Get("/", rt.todoHandler.List)
				r.Post("/", rt.todoHandler.Create)
				r.Put("/{id}", rt.todoHandler.Update)
				r.Delete("/{id}", rt.todoHandler.Delete)
			})
		})
	})

	return r
}
