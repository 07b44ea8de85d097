package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"playtrack/internal/catalog"
	"playtrack/internal/config"
	"playtrack/internal/database"
	"playtrack/internal/handlers"
	"playtrack/internal/logging"
	"playtrack/internal/repository"
	"playtrack/internal/security"
	"playtrack/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Log.Fatalf("Invalid log level: %v", err)
	}
	if cfg.Debug {
		logging.Log.SetLevel(logrus.DebugLevel)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logging.Log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	logging.Log.WithField("type", cfg.DatabaseType).Info("Database connection established")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logging.Log.Fatalf("Failed to run migrations: %v", err)
	}

	logging.Log.Info("Migrations completed successfully")

	cat, err := catalog.Default()
	if err != nil {
		logging.Log.Fatalf("Failed to load activity catalog: %v", err)
	}

	// Initialize repositories
	childRepo := repository.NewChildRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	// Initialize services
	childService := service.NewChildService(childRepo, recordRepo)
	progressService := service.NewProgressService(childRepo, recordRepo, cat)

	emailService, err := service.NewEmailService(context.Background(), cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		logging.Log.Fatalf("Failed to initialize email service: %v", err)
	}
	reportService := service.NewReportService(childRepo, progressService, emailService)

	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handlers.Health(db))
	handlers.NewChildHandler(childService).Register(mux)
	handlers.NewProgressHandler(progressService, reportService).Register(mux, limiter)

	handler := handlers.Recover(handlers.Logging(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Log.Infof("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Log.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Log.WithError(err).Error("Graceful shutdown failed")
	}
}
