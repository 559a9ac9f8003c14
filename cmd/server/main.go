package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	partnerapp "github.com/stockroom/backend/internal/application/partner"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/application/search"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/event"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/migration"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/printing"
	"github.com/stockroom/backend/internal/infrastructure/storage"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
	"github.com/stockroom/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting stockroom backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() { _ = lp.Shutdown(context.Background()) }()
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = lp.Bridge(log, level)
	}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	repos := persistence.NewRepositories(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewStockAuditHandler(log))
	if mp.IsEnabled() {
		stockMetrics, err := telemetry.NewStockMetrics(mp.Meter("stockroom.inventory"), repos.Stocks, log)
		if err != nil {
			log.Fatal("Failed to register stock metrics", zap.Error(err))
		}
		eventBus.Subscribe(stockMetrics)
	}

	images, err := newImageStore(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	renderer, closeRenderer := newReportRenderer(cfg.Report, log)
	defer closeRenderer()

	categoryService := catalogapp.NewCategoryService(repos.Categories, repos.Transactions)
	productService := catalogapp.NewProductService(repos.Products, repos.Categories, repos.Stocks, images, repos.Transactions, log)
	supplierService := partnerapp.NewSupplierService(repos.Suppliers, repos.Stocks)
	customerService := partnerapp.NewCustomerService(repos.Customers)
	stockService := inventoryapp.NewStockService(repos.Stocks, repos.Suppliers, repos.Products, repos.Customers, repos.Transactions, log)
	stockService.SetEventPublisher(eventBus)
	searchService := search.NewSearchService(productService, repos.Products, repos.Categories, repos.Suppliers)
	reportService := reportapp.NewReportService(repos.Stocks, repos.Products, repos.Suppliers, renderer, log)

	if cfg.Idempotency.Enabled {
		store, closeStore, err := newIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer closeStore()
		stockService.SetIdempotencyStore(store, cfg.Idempotency.TTL)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	stop := make(chan struct{})
	defer close(stop)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(stop)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	opts := router.Options{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MeterProvider:  mp,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MaxUploadSize:  cfg.HTTP.MaxUploadSize,
		RateLimiter:    limiter,
	}
	if cfg.Storage.Driver == "local" {
		opts.UploadsDir = cfg.Storage.LocalDir
		opts.UploadsPrefix = cfg.Storage.PublicPrefix
	}

	engine, err := router.New(opts, router.Handlers{
		Categories: handler.NewCategoryHandler(categoryService),
		Products:   handler.NewProductHandler(productService),
		Suppliers:  handler.NewSupplierHandler(supplierService),
		Customers:  handler.NewCustomerHandler(customerService),
		Stocks:     handler.NewStockHandler(stockService),
		Search:     handler.NewSearchHandler(searchService),
		Reports:    handler.NewReportHandler(reportService),
		Health:     handler.NewHealthHandler(db),
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies the embedded migrations over a short-lived
// connection. The migrate postgres driver closes the pool it is given,
// so it must not share the GORM one.
func runMigrations(dsn string, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Debug("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

func newImageStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (catalogapp.ImageStore, error) {
	switch cfg.Driver {
	case "s3":
		store, err := storage.NewS3ImageStore(ctx, cfg, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Info("Product images stored in S3", zap.String("bucket", store.Bucket()))
		return store, nil
	default:
		store, err := storage.NewLocalImageStore(cfg.LocalDir, cfg.PublicPrefix, log)
		if err != nil {
			return nil, err
		}
		log.Info("Product images stored on disk", zap.String("dir", store.Dir()))
		return store, nil
	}
}

func newReportRenderer(cfg config.ReportConfig, log *zap.Logger) (reportapp.Renderer, func()) {
	if cfg.Renderer != "chromedp" {
		return printing.NewNativeRenderer(cfg.Currency), func() {}
	}

	pdf := printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.RenderTimeout,
		RemoteURL:      cfg.ChromeURL,
		NoSandbox:      cfg.ChromeNoSandbox,
		Logger:         log,
	})
	closeFn := func() {
		if err := pdf.Close(); err != nil {
			log.Error("Error closing chromedp renderer", zap.Error(err))
		}
	}
	return printing.NewHTMLReportRenderer(pdf, cfg.Currency, log), closeFn
}

func newIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, func(), error) {
	if !cfg.Enabled {
		store := cache.NewInMemoryIdempotencyStore()
		return store, func() { _ = store.Close() }, nil
	}

	store, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
