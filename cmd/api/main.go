package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venditio/crm-api/docs"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/config"
	"github.com/venditio/crm-api/internal/database"
	"github.com/venditio/crm-api/internal/http/handler"
	"github.com/venditio/crm-api/internal/http/middleware"
	"github.com/venditio/crm-api/internal/http/router"
	"github.com/venditio/crm-api/internal/jobs"
	"github.com/venditio/crm-api/internal/logger"
	"github.com/venditio/crm-api/internal/pdf"
	"github.com/venditio/crm-api/internal/repository"
	"github.com/venditio/crm-api/internal/service"
	"github.com/venditio/crm-api/internal/storage"
	"go.uber.org/zap"
)

// @title Venditio CRM API
// @version 1.0
// @description CRM API for lead, deal and quotation workflow management

// @contact.name API Support
// @contact.email support@venditio.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.New(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	dealRepo := repository.NewDealRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	costSheetRepo := repository.NewCostSheetRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	dealService := service.NewDealService(dealRepo, numberSequenceService, log)
	leadService := service.NewLeadService(leadRepo, dealRepo, numberSequenceService, log)
	quotationService := service.NewQuotationService(quotationRepo, dealRepo, log)
	costSheetService := service.NewCostSheetService(costSheetRepo, dealRepo, log)
	todoService := service.NewTodoService(todoRepo, log)
	documentService := service.NewDocumentService(documentRepo, dealRepo, fileStorage, log)

	// PDF renderer
	renderer := pdf.NewQuotationRenderer(cfg.App.Name, "")

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(log)
	leadHandler := handler.NewLeadHandler(leadService, log)
	dealHandler := handler.NewDealHandler(dealService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, renderer, log)
	costSheetHandler := handler.NewCostSheetHandler(costSheetService, log)
	documentHandler := handler.NewDocumentHandler(documentService, log)
	notificationHandler := handler.NewNotificationHandler(quotationService, log)
	todoHandler := handler.NewTodoHandler(todoService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		leadHandler,
		dealHandler,
		quotationHandler,
		costSheetHandler,
		documentHandler,
		notificationHandler,
		todoHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterQuotationStatusJob(
			scheduler,
			quotationService,
			log,
			cfg.Jobs.QuotationStatusSyncCron,
		); err != nil {
			log.Error("Failed to register quotation status job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.String("cron_expr", cfg.Jobs.QuotationStatusSyncCron),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
