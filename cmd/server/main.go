package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/infrastructure/cache"
	"github.com/agrm/backend/internal/infrastructure/catalog"
	"github.com/agrm/backend/internal/infrastructure/config"
	"github.com/agrm/backend/internal/infrastructure/event"
	"github.com/agrm/backend/internal/infrastructure/logger"
	"github.com/agrm/backend/internal/infrastructure/persistence"
	"github.com/agrm/backend/internal/infrastructure/telemetry"
	"github.com/agrm/backend/internal/interfaces/http/handler"
	"github.com/agrm/backend/internal/interfaces/http/middleware"
	"github.com/agrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// Telemetry providers. Each one is a noop when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	// Mirror application logs to the OTLP pipeline when it is enabled
	log := telemetry.NewBridgedLogger(baseLog.Core(), telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    serviceName,
		LoggerProvider: loggerProvider,
		Level:          logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}), zap.AddCaller())
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting credit application service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTelemetry := telemetry.DefaultDBConfig()
	dbTelemetry.Tracing = cfg.Telemetry.DBTraceEnabled
	dbTelemetry.Metrics = cfg.Telemetry.DBMetricsEnabled
	dbTelemetry.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTelemetry.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTelemetry, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider.Meter("agrm/database"), dbTelemetry, log)
	if err != nil {
		log.Warn("Database metrics disabled", zap.Error(err))
	}

	// Workflow catalog
	def, err := catalog.Load(cfg.Workflow.DefinitionPath, log)
	if err != nil {
		log.Fatal("Failed to load workflow catalog", zap.Error(err))
	}

	// Initialize repositories
	applicationRepo := persistence.NewGormCreditApplicationRepository(db.DB)
	repos := creditapp.Repositories{
		Applications: applicationRepo,
		Incomes:      persistence.NewGormIncomeRecordRepository(db.DB),
		Expenses:     persistence.NewGormExpenseRecordRepository(db.DB),
		Audits:       persistence.NewGormTransitionAuditRepository(db.DB),
		Snapshots:    persistence.NewGormCapacitySnapshotRepository(db.DB),
	}

	// Loan products, optionally behind Redis
	products, closeProducts := cache.NewProductCatalogFactory(cfg.Redis, cfg.Workflow, log).
		Create(ctx, persistence.NewGormLoanProductRepository(db.DB))
	defer func() {
		if err := closeProducts(); err != nil {
			log.Error("Error closing product cache", zap.Error(err))
		}
	}()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	creditMetrics, err := telemetry.NewCreditMetrics(telemetry.CreditMetricsConfig{
		Meter:          meterProvider.Meter("agrm/credit"),
		Logger:         log,
		StatusProvider: applicationRepo,
	})
	if err != nil {
		log.Fatal("Failed to initialize credit metrics", zap.Error(err))
	}
	eventBus.Subscribe(creditMetrics, creditMetrics.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	collectCtx, stopCollect := context.WithCancel(ctx)
	defer stopCollect()
	if cfg.Telemetry.MetricsEnabled {
		creditMetrics.StartPeriodicCollection(collectCtx, cfg.Telemetry.StatusGaugeInterval)
		if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(collectCtx)
		}
	}

	// Application service
	lifecycleService := creditapp.NewLifecycleService(
		repos,
		products,
		credit.NewStateMachine(def),
		credit.NewValidator(credit.WithLocale(language.Make(cfg.Workflow.Locale))),
		log,
	)
	lifecycleService.SetEventPublisher(eventBus)
	lifecycleService.SetCreditMetrics(creditMetrics)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = serviceName

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter("agrm/http"), log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("limit", cfg.HTTP.RateLimit),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, db)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.CreditRoutes(
			handler.NewCreditApplicationHandler(lifecycleService),
			handler.NewFinancialRecordHandler(lifecycleService),
			handler.NewWorkflowHandler(lifecycleService),
			middleware.RequireActor(),
		),
		handler.SystemRoutes(systemHandler),
	)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	creditMetrics.Stop()
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry provider shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
