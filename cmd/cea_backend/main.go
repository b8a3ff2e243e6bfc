package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/core/services"
	"github.com/fxsync/currency_exchange_app/internal/dto"
	"github.com/fxsync/currency_exchange_app/internal/handlers"
	"github.com/fxsync/currency_exchange_app/internal/metrics"
	"github.com/fxsync/currency_exchange_app/internal/middleware"
	"github.com/fxsync/currency_exchange_app/internal/ratefetch"
	"github.com/fxsync/currency_exchange_app/internal/repositories/database/pgsql"
	"github.com/fxsync/currency_exchange_app/internal/scheduler"
	"github.com/fxsync/currency_exchange_app/pkg/config"
	"github.com/fxsync/currency_exchange_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title CEA Backend API
// @version 1.0
// @description Currency exchange rate acquisition and conversion API.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := dto.RegisterValidations(); err != nil {
		logger.Error("Failed to register custom validations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories, external client and services
	rateRepo := pgsql.NewPgxExchangeRateRepository(dbPool)
	fetcher := ratefetch.NewClient(cfg.RateAPIBaseURL, cfg.RateAPIKey, cfg.RateAPITimeout, logger)
	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	clock := services.NewClock()

	converterCfg := services.ConverterConfig{
		FallbackCurrency: cfg.FallbackCurrency,
		EnableFallback:   cfg.EnableFallback,
		AmountDecimals:   cfg.AmountDecimals,
		RateDecimals:     cfg.RateDecimals,
		MinAmount:        decimal.NewFromFloat(cfg.MinAmount),
		MaxAmount:        decimal.NewFromFloat(cfg.MaxAmount),
	}
	syncCfg := services.SyncConfig{
		DelayBetweenCalls: cfg.SyncDelayBetweenCalls,
		MaxAttempts:       cfg.SyncMaxRetries,
		RetryBaseDelay:    cfg.SyncRetryDelay,
		RateLimitCooldown: cfg.SyncRateLimitCooldown,
	}

	serviceContainer := &ports.ServiceContainer{
		Converter: services.NewConverterService(rateRepo, converterCfg, clock, logger, appMetrics),
		RateSync:  services.NewRateSyncService(rateRepo, fetcher, syncCfg, clock, logger, appMetrics),
		RateQuery: services.NewRateQueryService(rateRepo, logger),
	}

	// Start the daily sync scheduler
	syncScheduler, err := scheduler.New(serviceContainer.RateSync, cfg.SyncScheduleTime, logger)
	if err != nil {
		logger.Error("Failed to create sync scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go syncScheduler.Start(schedulerCtx)

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Per-IP rate limiting on the conversion endpoint
	limiterInstance := limiter.New(limitermemory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  int64(cfg.RateLimitRPM),
	})

	handlers.RegisterRoutes(r, cfg, serviceContainer, middleware.RateLimit(limiterInstance))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
