package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/logger"
	"worklog/internal/repository"
	"worklog/internal/router"
	"worklog/internal/services"
	"worklog/internal/validator"
	"worklog/internal/workweek"
)

// @title           Worklog API
// @version         1.0
// @description     Worklog records employee daily project hours and turns them into weekly reports. Submitting a report locks the hours it covers.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	// Create database manager
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(database.DefaultMigrationsPath); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	store := repository.NewStore(dbManager.DB())
	calendar := workweek.New(appConfig.Location)
	auditService := services.NewAuditService(store)
	aggregationService := services.NewAggregationService(store)
	logService := services.NewDailyLogService(store, calendar, auditService)
	reportService := services.NewReportService(store, calendar, logService, aggregationService, auditService)

	engine := router.New(router.Deps{
		Logs:           logService,
		Aggregation:    aggregationService,
		Reports:        reportService,
		Audit:          auditService,
		DB:             dbManager,
		MetricsEnabled: appConfig.MetricsEnabled,
		MetricsAPIKey:  appConfig.MetricsAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Worklog server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
