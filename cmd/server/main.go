package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	financeapp "github.com/erp/retail/internal/application/finance"
	importapp "github.com/erp/retail/internal/application/import"
	inventoryapp "github.com/erp/retail/internal/application/inventory"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/cache"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/erp/retail/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting retail ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	businessMetrics, err := telemetry.NewBusinessMetrics(mp.Meter("retail.business"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: dbTracing.SlowQueryThresh,
		Tracing:       &dbTracing,
		RequireTenant: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database connected successfully")

	batches, err := cache.NewBatchStore(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize batch store", zap.Error(err))
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	repos := persistence.NewGormRepositories(db.DB)

	ledger := inventoryapp.NewLedgerService(scope, repos)
	ledger.SetMetrics(businessMetrics)
	finance := financeapp.NewFinanceService(scope, repos)
	finance.SetMetrics(businessMetrics)
	purchases := tradeapp.NewPurchaseService(scope, repos)
	purchases.SetIdempotencyStore(batches, cfg.Import.BatchKeyTTL)
	purchases.SetMetrics(businessMetrics)
	sales := tradeapp.NewSalesService(scope, repos)
	sales.SetIdempotencyStore(batches, cfg.Import.BatchKeyTTL)
	sales.SetMetrics(businessMetrics)
	imports := importapp.NewService(purchases, sales, repos, cfg.Import.MaxRows)

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.Dependencies{
		Config:    cfg,
		Logger:    log,
		Verifier:  auth.NewTokenVerifier(cfg.JWT),
		DB:        sqlDB,
		Meters:    mp,
		Ledger:    ledger,
		Finance:   finance,
		Purchases: purchases,
		Sales:     sales,
		Imports:   imports,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if closer, ok := batches.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing batch store", zap.Error(err))
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited")
}
