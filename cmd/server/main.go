package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/pattycroche/storefront/docs"
	cartapp "github.com/pattycroche/storefront/internal/application/cart"
	catalogapp "github.com/pattycroche/storefront/internal/application/catalog"
	checkoutapp "github.com/pattycroche/storefront/internal/application/checkout"
	"github.com/pattycroche/storefront/internal/domain/messaging"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/pattycroche/storefront/internal/infrastructure/cache"
	"github.com/pattycroche/storefront/internal/infrastructure/config"
	"github.com/pattycroche/storefront/internal/infrastructure/event"
	"github.com/pattycroche/storefront/internal/infrastructure/handoff"
	"github.com/pattycroche/storefront/internal/infrastructure/logger"
	"github.com/pattycroche/storefront/internal/infrastructure/persistence"
	"github.com/pattycroche/storefront/internal/infrastructure/postal"
	"github.com/pattycroche/storefront/internal/infrastructure/ratelimit"
	"github.com/pattycroche/storefront/internal/infrastructure/rates"
	"github.com/pattycroche/storefront/internal/infrastructure/strategy"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
	"github.com/pattycroche/storefront/internal/interfaces/http/handler"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
	"github.com/pattycroche/storefront/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			Patty Crochê Storefront API
//	@version		1.0
//	@description	Catalog, cart, shipping quotes and order submission for the Patty Crochê shop.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeLayout: logger.ISO8601Millis,
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	tel, log := initTelemetry(ctx, cfg, log)

	db, err := persistence.Open(ctx, cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.InstrumentGorm(db.DB, telemetry.DBTracing{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		System:  dbSystem,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	storeOpts := []cache.StoresOption{cache.WithLogger(log)}
	if redisClient != nil {
		storeOpts = append(storeOpts, cache.WithRedisClient(redisClient))
	}
	stores, err := cache.NewStores(cfg.Cart, cfg.Checkout, storeOpts...)
	if err != nil {
		log.Fatal("Failed to initialize session stores", zap.Error(err))
	}

	contact, err := messaging.NewContact(cfg.Shop.CountryCode, cfg.Shop.WhatsAppNumber)
	if err != nil {
		log.Fatal("Invalid shop WhatsApp number", zap.Error(err))
	}
	origin, err := valueobject.NewPostalCode(cfg.Shop.OriginPostalCode)
	if err != nil {
		log.Fatal("Invalid shop origin postal code", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Outbound adapters
	postalLookup := cache.NewCachedPostalLookup(
		postal.NewViaCEPAdapter(postal.ViaCEPConfig{
			BaseURL: cfg.PostalLookup.BaseURL,
			Timeout: cfg.PostalLookup.Timeout,
		}, log),
		cfg.PostalLookup.CacheTTL, log,
	)
	rateCalculator := rates.NewMelhorEnvioAdapter(rates.Config{
		BaseURL:     cfg.Shipping.BaseURL,
		Token:       cfg.Shipping.Token,
		UserAgent:   cfg.Shipping.UserAgent,
		Timeout:     cfg.Shipping.Timeout,
		MaxFailures: cfg.Shipping.BreakerMaxFailures,
		OpenTimeout: cfg.Shipping.BreakerOpenTimeout,
	}, log)

	strategies, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to register listing price strategies", zap.Error(err))
	}

	// Event bus and seller handoff
	var dispatcher checkoutapp.HandoffDispatcher = handoff.NewLogDispatcher(log)
	if cfg.Handoff.WebhookURL != "" {
		dispatcher = handoff.NewWebhookDispatcher(cfg.Handoff.WebhookURL, cfg.Handoff.Timeout, log)
	}
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(checkoutapp.NewOrderPlacedHandler(dispatcher, contact, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	classifier := shipping.NewLocalityClassifier(cfg.Shop.LocalCities...)
	productService := catalogapp.NewProductService(productRepo, strategies, log)
	cartService := cartapp.NewCartService(stores.Carts, productService, log)
	quoteService := checkoutapp.NewQuoteService(
		postalLookup,
		rateCalculator,
		shipping.NewQuoteNormalizer(classifier),
		stores.Quotes,
		cartService,
		productService,
		checkoutapp.QuoteServiceConfig{Origin: origin, InsureItems: cfg.Shipping.InsureItems},
		log,
	)

	orderOpts := []checkoutapp.OrderServiceOption{
		checkoutapp.WithSubmissionGuard(stores.Guard, shared.SubmissionGuardConfig{
			Enabled: cfg.Checkout.GuardEnabled,
			TTL:     cfg.Checkout.GuardTTL,
		}),
		checkoutapp.WithEventPublisher(eventBus),
	}
	if tel.meters.IsEnabled() {
		checkoutMetrics, err := telemetry.NewCheckoutMetrics(tel.meters.Meter("storefront/checkout"))
		if err != nil {
			log.Warn("Failed to create checkout metrics", zap.Error(err))
		} else {
			orderOpts = append(orderOpts, checkoutapp.WithOrderRecorder(checkoutMetrics))
		}
	}
	orderService := checkoutapp.NewOrderService(
		trade.NewOrderAssembler(nil),
		orderRepo,
		stores.Quotes,
		cartService,
		productService,
		contact,
		log,
		orderOpts...,
	)
	channelService := checkoutapp.NewChannelService(postalLookup, classifier, productService, contact)

	// Handlers
	healthChecks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	handlers := router.Handlers{
		Catalog:  handler.NewCatalogHandler(productService),
		Cart:     handler.NewCartHandler(cartService),
		Shipping: handler.NewShippingHandler(quoteService),
		Checkout: handler.NewCheckoutHandler(orderService, channelService),
		Health:   handler.NewHealthHandler(telemetry.ServiceVersion, healthChecks),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var submitLimiter ratelimit.Limiter
	switch {
	case cfg.HTTP.SubmitRateLimit <= 0:
	case redisClient != nil:
		submitLimiter = ratelimit.NewRedis(redisClient, "", cfg.HTTP.SubmitRateLimit, cfg.HTTP.SubmitRateWindow)
	default:
		submitLimiter = ratelimit.NewMemory(cfg.HTTP.SubmitRateLimit, cfg.HTTP.SubmitRateWindow)
	}

	engineCfg := router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           middleware.NewCORSPolicy(cfg.HTTP.CORSAllowOrigins, cfg.HTTP.CORSAllowMethods, cfg.HTTP.CORSAllowHeaders),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Tracing:        tel.tracer.IsEnabled(),
		Profiling:      tel.profiler.IsEnabled(),
		SubmitLimiter:  submitLimiter,
		Swagger:        cfg.HTTP.SwaggerEnabled,
	}
	if tel.meters.IsEnabled() {
		engineCfg.Meter = tel.meters.Meter("storefront/http")
	}
	engine := router.NewEngine(engineCfg, handlers, log)

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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		log.Warn("Error closing session stores", zap.Error(err))
	}
	if err := postalLookup.Close(); err != nil {
		log.Warn("Error closing postal lookup cache", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Error closing Redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited")
}

// telemetryProviders holds the OpenTelemetry providers and the profiler
type telemetryProviders struct {
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// initTelemetry starts tracing, metrics, the logs bridge and profiling.
// Failures are logged and leave the corresponding provider disabled. The
// returned logger is teed into the logs pipeline when it is enabled.
func initTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryProviders, *zap.Logger) {
	tc := cfg.Telemetry
	collector := telemetry.Collector{
		Endpoint:    tc.CollectorEndpoint,
		Insecure:    tc.Insecure,
		ServiceName: tc.ServiceName,
	}
	tel := &telemetryProviders{}

	var err error
	tel.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Collector:     collector,
		Enabled:       tc.Enabled,
		SamplingRatio: tc.SamplingRatio,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize tracing, continuing without it", zap.Error(err))
		tel.tracer, _ = telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{}, log)
	}

	tel.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        tc.Enabled && tc.MetricsEnabled,
		ExportInterval: tc.MetricsInterval,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize metrics, continuing without them", zap.Error(err))
		tel.meters, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	tel.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   tc.Enabled && tc.LogsEnabled,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize log export, continuing without it", zap.Error(err))
		tel.logs, _ = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{}, log)
	}
	log = tel.logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	tel.profiler, err = telemetry.StartProfiler(telemetry.ProfilingConfig{
		Enabled:     tc.ProfilingEnabled,
		Server:      tc.ProfilerAddress,
		Application: tc.ServiceName,
		Profiles:    tc.ProfileTypes,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without it", zap.Error(err))
	}
	if tel.profiler.IsEnabled() {
		tel.tracer.EnableSpanProfiles()
	}

	return tel, log
}

func (t *telemetryProviders) shutdown(ctx context.Context, log *zap.Logger) {
	if err := t.profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	// last, so shutdown logs above still reach the collector
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}
