package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/tradebooks/backend/internal/infrastructure/config"
	"github.com/tradebooks/backend/internal/infrastructure/export"
	"github.com/tradebooks/backend/internal/infrastructure/lock"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/infrastructure/persistence"
	"github.com/tradebooks/backend/internal/infrastructure/storage"
	"github.com/tradebooks/backend/internal/infrastructure/telemetry"
	"github.com/tradebooks/backend/internal/interfaces/http/handler"
	"github.com/tradebooks/backend/internal/interfaces/http/middleware"
	"github.com/tradebooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.App.Env == "development",
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Party locks serialise guarded writes per party
	locker, closeLocker, err := lock.NewFactory(cfg.Redis, cfg.Ledger, lock.WithLogger(log)).CreateLocker(ctx)
	if err != nil {
		log.Fatal("Failed to initialize party locks", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing lock client", zap.Error(err))
		}
	}()

	// Report archive: S3 when configured, in-memory otherwise
	var archive ledgerapp.ReportArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ReportArchive(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize report archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report archive bucket", zap.Error(err))
		}
		archive = s3Archive
		log.Info("Report archive ready", zap.String("bucket", s3Archive.Bucket()))
	} else {
		archive = storage.NewMemoryReportArchive(cfg.Storage.ArchivePrefix)
		log.Info("Object storage disabled, archiving reports in memory")
	}

	// Initialize application services
	partyService := ledgerapp.NewPartyService(partyRepo, cfg.Ledger.DefaultPhoneRegion)
	entryService := ledgerapp.NewEntryService(partyRepo, uow, locker,
		ledgerapp.WithDefaultCreditCeiling(cfg.Ledger.DefaultCreditCeiling),
		ledgerapp.WithMetrics(ledgerMetrics),
	)
	reportService := ledgerapp.NewReportService(partyRepo, txRepo,
		ledgerapp.WithExporter(export.NewExcelExporter()),
		ledgerapp.WithArchive(archive),
		ledgerapp.WithExportLimit(cfg.HTTP.ExportMaxInvoices),
	)

	handlers := router.Handlers{
		Health: handler.NewHealthHandler(db, version),
		Party:  handler.NewPartyHandler(partyService),
		Entry:  handler.NewEntryHandler(entryService, cfg.Ledger.ImportMaxRows),
		Report: handler.NewReportHandler(reportService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Middleware order matters: request ID first so every log line carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAnnotator())

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	if corsMiddleware := middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}); corsMiddleware != nil {
		engine.Use(corsMiddleware)
	}
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Writes are rate limited per client IP; reads are not
	var writeGuard []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter, err := middleware.NewRateLimiter(cfg.HTTP.RateLimit)
		if err != nil {
			log.Fatal("Invalid rate limit", zap.String("rate", cfg.HTTP.RateLimit), zap.Error(err))
		}
		writeGuard = append(writeGuard, middleware.RateLimit(limiter))
	}

	router.NewRouter(engine).
		Register(router.LedgerRoutes(handlers, writeGuard...)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
