package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers mounted by New
type Handlers struct {
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Suppliers  *handler.SupplierHandler
	Customers  *handler.CustomerHandler
	Stocks     *handler.StockHandler
	Search     *handler.SearchHandler
	Reports    *handler.ReportHandler
	Health     *handler.HealthHandler
}

// Options configures the engine built by New
type Options struct {
	Logger         *zap.Logger
	APIVersion     string
	ServiceName    string
	TracingEnabled bool
	// MeterProvider records HTTP metrics when set and enabled
	MeterProvider  *telemetry.MeterProvider
	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodySize    int64
	MaxUploadSize  int64
	// RateLimiter is nil when rate limiting is off
	RateLimiter *middleware.RateLimiter
	// UploadsDir is served under UploadsPrefix when both are set
	UploadsDir    string
	UploadsPrefix string
}

// New builds the gin engine with the full middleware chain and every route
func New(opts Options, h Handlers) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "v1"
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	r := NewRouter(engine, WithAPIVersion(opts.APIVersion))
	base := r.BasePath()

	httpMetrics, err := middleware.HTTPMetrics(opts.MeterProvider)
	if err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(opts.Logger),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: opts.TracingEnabled}),
		middleware.SpanEnricher(),
		httpMetrics,
		logger.GinMiddleware(opts.Logger),
		middleware.Secure(),
		middleware.CORS(opts.CORS),
	)
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	if opts.MaxBodySize > 0 {
		upload := max(opts.MaxUploadSize, opts.MaxBodySize)
		engine.Use(middleware.BodyLimit(opts.MaxBodySize,
			middleware.BodyLimitRule{Method: http.MethodPost, Route: base + "/products", MaxBytes: upload},
			middleware.BodyLimitRule{Method: http.MethodPut, Route: base + "/products/:id", MaxBytes: upload},
		))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}
	if opts.UploadsDir != "" && opts.UploadsPrefix != "" {
		engine.Static(opts.UploadsPrefix, opts.UploadsDir)
	}

	r.Register(resources(h)...)
	r.Setup()
	return engine, nil
}

func resources(h Handlers) []RouteRegistrar {
	var out []RouteRegistrar

	if h.Categories != nil {
		out = append(out, NewResource("/categories").
			POST("", h.Categories.Create).
			GET("", h.Categories.List).
			GET("/:id", h.Categories.GetByID).
			PUT("/:id", h.Categories.Update).
			DELETE("/:id", h.Categories.Delete))
	}
	if h.Products != nil {
		out = append(out, NewResource("/products").
			POST("", h.Products.Create).
			GET("", h.Products.List).
			GET("/:id", h.Products.GetByID).
			PUT("/:id", h.Products.Update).
			DELETE("/:id", h.Products.Delete))
	}
	if h.Suppliers != nil {
		out = append(out, NewResource("/suppliers").
			POST("", h.Suppliers.Create).
			GET("", h.Suppliers.List).
			GET("/:id", h.Suppliers.GetByID).
			PUT("/:id", h.Suppliers.Update).
			DELETE("/:id", h.Suppliers.Delete))
	}
	if h.Customers != nil {
		out = append(out, NewResource("/customers").
			POST("", h.Customers.Create).
			GET("", h.Customers.List).
			GET("/:id", h.Customers.GetByID))
	}
	if h.Stocks != nil {
		out = append(out, NewResource("/stocks").
			POST("", h.Stocks.Create).
			GET("", h.Stocks.List).
			GET("/:id", h.Stocks.GetByID).
			PUT("/:id", h.Stocks.Update).
			DELETE("/:id", h.Stocks.Delete).
			POST("/:id/items", h.Stocks.AddItems).
			DELETE("/:id/items", h.Stocks.RemoveItems).
			POST("/:id/finalize", h.Stocks.Finalize))
	}
	if h.Search != nil {
		out = append(out, NewResource("/search").
			GET("/products", h.Search.Products).
			GET("/suppliers", h.Search.Suppliers))
	}
	if h.Reports != nil {
		out = append(out, NewResource("/reports").
			GET("/stock-summary", h.Reports.StockSummary).
			GET("/suppliers", h.Reports.SupplierSummary))
	}
	if h.Health != nil {
		out = append(out, NewResource("/health").GET("", h.Health.Check))
	}
	return out
}
