package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/handlers"
	"github.com/loganlanou/merch-storefront/internal/jobs"
	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/loganlanou/merch-storefront/internal/shipping"
	"github.com/loganlanou/merch-storefront/internal/stripe"
	"github.com/loganlanou/merch-storefront/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Service struct {
	storage  *storage.Storage
	config   *Config
	logger   *slog.Logger
	registry *prometheus.Registry
	redis    *redis.Client

	carts       cart.Store
	cartExpirer *jobs.CartExpirer

	catalogHandler  *handlers.CatalogHandler
	bundleHandler   *handlers.BundleHandler
	cartHandler     *handlers.CartHandler
	checkoutHandler *handlers.CheckoutHandler
	paymentHandler  *handlers.PaymentHandler
}

// New wires every component. A nil storage keeps carts in memory, which is
// how the route tests run.
func New(ctx context.Context, store *storage.Storage, config *Config) (*Service, error) {
	logger := slog.Default()

	if err := catalog.Warm(ctx); err != nil {
		return nil, fmt.Errorf("loading catalogs: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	pricing, err := bundle.DefaultPricing()
	if err != nil {
		// Bundle endpoints answer 503 until pricing is available.
		logger.Error("failed to load bundle pricing", "error", err)
		pricing = bundle.NewPricing()
	}
	assembler := bundle.NewAssembler(logger, m)

	s := &Service{
		storage:  store,
		config:   config,
		logger:   logger,
		registry: registry,
	}

	if store != nil {
		carts := storage.NewCartStore(store)
		s.carts = carts
		s.cartExpirer = jobs.NewCartExpirer(carts, config.CartTTL, logger)
	} else {
		s.carts = cart.NewMemoryStore()
	}

	edge := checkout.NewEdgeClient(config.Edge.FunctionsURL, config.Edge.AnonKey, config.Edge.Timeout, logger)
	if !edge.Configured() {
		logger.Warn("SUPABASE_FUNCTIONS_URL not set, payment and edge shipping calls will fail")
	}

	quoter := shipping.NewService(
		s.shippingProvider(edge),
		s.shippingCache(ctx),
		logger,
		shipping.WithTTL(config.Shipping.CacheTTL, config.Shipping.FallbackTTL),
		shipping.WithFetchTimeout(config.Edge.Timeout),
		shipping.WithMetrics(m),
	)

	s.catalogHandler = handlers.NewCatalogHandler(assembler)
	s.bundleHandler = handlers.NewBundleHandler(pricing, assembler, s.carts, logger)
	s.cartHandler = handlers.NewCartHandler(s.carts, assembler)
	s.checkoutHandler = handlers.NewCheckoutHandler(s.carts, quoter, m, logger)
	s.paymentHandler = handlers.NewPaymentHandler(
		s.carts,
		edge,
		stripe.NewStripeService(config.Stripe.SecretKey),
		stripe.NewWebhookVerifier(config.Stripe.WebhookSecret),
		m,
		logger,
	)

	if config.Stripe.WebhookSecret == "" {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	return s, nil
}

func (s *Service) shippingProvider(edge *checkout.EdgeClient) shipping.Provider {
	if s.config.Shipping.Provider == ShippingProviderEasyPost {
		p := shipping.NewEasyPostProvider(s.config.Shipping.EasyPostAPIKey, s.config.Shipping.From(), nil, s.logger)
		if p.IsUsingMockData() {
			s.logger.Warn("EASYPOST_API_KEY not set, using mock shipping rates")
		}
		return p
	}
	return shipping.NewEdgeProvider(edge)
}

func (s *Service) shippingCache(ctx context.Context) shipping.Cache {
	if s.config.Shipping.RedisURL == "" {
		return shipping.NewMemoryCache()
	}
	client, err := shipping.DialRedis(ctx, s.config.Shipping.RedisURL)
	if err != nil {
		s.logger.Warn("redis unavailable, caching shipping quotes in memory", "error", err)
		return shipping.NewMemoryCache()
	}
	s.redis = client
	return shipping.NewRedisCache(client)
}

// Start runs the background jobs until ctx is cancelled or Close is called.
func (s *Service) Start(ctx context.Context) {
	if s.cartExpirer != nil {
		s.cartExpirer.Start(ctx)
	}
}

func (s *Service) Close() error {
	if s.cartExpirer != nil {
		s.cartExpirer.Stop()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Health check and metrics - no session
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := e.Group("/api", middleware.CartSession())

	// Catalog
	api.GET("/catalog", s.catalogHandler.HandleListProducts)
	api.GET("/catalog/:category", s.catalogHandler.HandleProduct)
	api.GET("/catalog/:category/variant", s.catalogHandler.HandleVariant)
	api.GET("/catalog/:category/variants/:id", s.catalogHandler.HandleVariantByID)
	api.GET("/catalog/:category/swatch/:color", s.catalogHandler.HandleSwatch)

	// Bundles
	api.GET("/bundles", s.bundleHandler.HandleListBundles)
	api.GET("/bundles/:id", s.bundleHandler.HandleGetBundle)
	api.POST("/bundles/:id/cart", s.bundleHandler.HandleAddToCart)

	// Cart
	api.GET("/cart", s.cartHandler.HandleGetCart)
	api.POST("/cart/items", s.cartHandler.HandleAddItem)
	api.PUT("/cart/items/:id", s.cartHandler.HandleUpdateItem)
	api.DELETE("/cart/items/:id", s.cartHandler.HandleRemoveItem)
	api.DELETE("/cart/bundles/:bundleId", s.cartHandler.HandleRemoveBundle)
	api.DELETE("/cart", s.cartHandler.HandleClearCart)

	// Checkout
	api.POST("/checkout/validate", s.checkoutHandler.HandleValidate)
	api.POST("/shipping/rates", s.checkoutHandler.HandleShippingRates)

	// Payment
	api.POST("/payment/create-intent", s.paymentHandler.CreatePaymentIntent)
	api.POST("/payment/confirm", s.paymentHandler.ConfirmPayment)
	api.GET("/payment/status/:id", s.paymentHandler.GetPaymentStatus)
	api.POST("/payment/receipt", s.paymentHandler.DownloadReceipt)

	// Stripe webhook - no session, the cart is named in the intent metadata
	e.POST("/api/stripe/webhook", s.paymentHandler.HandleWebhook)
}

func (s *Service) handleHealth(c echo.Context) error {
	database := "memory"
	if s.storage != nil {
		database = "connected"
		if err := s.storage.DB().PingContext(c.Request().Context()); err != nil {
			database = "unreachable"
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"environment": s.config.Environment,
		"database":    database,
		"currency":    s.config.Currency,
	})
}
