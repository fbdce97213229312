package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/logger"
	"github.com/pattycroche/storefront/internal/infrastructure/ratelimit"
	"github.com/pattycroche/storefront/internal/interfaces/http/handler"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the storefront API handlers
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Shipping *handler.ShippingHandler
	Checkout *handler.CheckoutHandler
	Health   *handler.HealthHandler
}

// EngineConfig configures the HTTP engine
type EngineConfig struct {
	ServiceName    string
	TrustedProxies []string
	CORS           middleware.CORSPolicy
	MaxBodySize    int64
	Tracing        bool
	Profiling      bool
	Meter          metric.Meter // nil disables HTTP metrics
	// SubmitLimiter throttles order submissions; nil disables it
	SubmitLimiter ratelimit.Limiter
	// Swagger serves the API documentation under /swagger
	Swagger bool
}

// NewEngine builds the gin engine with the middleware stack and every
// storefront route.
//
// Middleware order: recovery, request id, session, tracing, request
// logging, metrics, security headers, CORS, body limit.
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Session())
	if cfg.Tracing {
		engine.Use(middleware.Tracing(cfg.ServiceName)...)
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	engine.Use(middleware.Profiling(cfg.Profiling))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := API{Version: "v1"}
	if h.Catalog != nil {
		api.Areas = append(api.Areas, Area{Prefix: "/catalog", Routes: []Route{
			Get("/products", h.Catalog.ListProducts),
			Get("/products/:id", h.Catalog.GetProduct),
			Get("/products/:id/listing-prices", h.Catalog.ListingPrices),
			Get("/categories", h.Catalog.Categories),
		}})
	}
	if h.Cart != nil {
		api.Areas = append(api.Areas, Area{Prefix: "/cart", Routes: []Route{
			Get("", h.Cart.Get),
			Delete("", h.Cart.Clear),
			Post("/items", h.Cart.AddItem),
			Put("/items/:id", h.Cart.UpdateItem),
			Delete("/items/:id", h.Cart.RemoveItem),
		}})
	}
	if h.Shipping != nil {
		api.Areas = append(api.Areas, Area{Prefix: "/shipping", Routes: []Route{
			Get("/address/:postalCode", h.Shipping.LookupAddress),
			Post("/quotes", h.Shipping.Quote),
		}})
	}
	if h.Checkout != nil {
		submit := []gin.HandlerFunc{h.Checkout.SubmitOrder}
		if cfg.SubmitLimiter != nil {
			submit = append([]gin.HandlerFunc{middleware.RateLimit(cfg.SubmitLimiter)}, submit...)
		}
		api.Areas = append(api.Areas, Area{Prefix: "/checkout", Routes: []Route{
			Post("/orders", submit...),
			Post("/channel", h.Checkout.ResolveChannel),
		}})
	}
	api.Mount(engine)
	log.Debug("API routes mounted", zap.Strings("endpoints", api.Endpoints()))

	return engine
}
