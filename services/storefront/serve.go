package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/config"
	"github.com/matheusmosca/storefront/services/storefront/database"
	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/gateway"
	"github.com/matheusmosca/storefront/services/storefront/handlers"
	"github.com/matheusmosca/storefront/services/storefront/repository"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia o servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Initialize OpenTelemetry
	if cfg.TelemetryEnabled {
		shutdown, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("Error shutting down telemetry", zap.Error(err))
			}
		}()
	}

	// Initialize database
	pool, err := database.InitPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher := initPublisher(cfg, logger)
	defer publisher.Close()

	productCache := initProductCache(ctx, cfg, logger)

	if cfg.Stripe.WebhookSecret == "" {
		logger.Warn("⚠️ STRIPE_WEBHOOK_SECRET não configurado: o webhook vai responder 500")
	}

	// Initialize dependencies
	store := repository.NewPostgresStore(pool)
	stripe := gateway.NewStripeClient(cfg.Stripe.APIURL, cfg.Stripe.SecretKey, cfg.Stripe.Timeout, logger)
	verifier := gateway.NewSignatureVerifier(cfg.Stripe.WebhookTolerance)
	tracer := otel.Tracer(cfg.Service)

	authUseCase := usecases.NewAuthUseCase(store.Users(), cfg.JWTSecret, logger)
	catalogUseCase := usecases.NewCatalogUseCase(store.Products(), productCache, logger)
	cartUseCase := usecases.NewCartUseCase(store, logger)
	checkoutUseCase := usecases.NewCheckoutUseCase(store, productCache, publisher, logger)
	intentUseCase := usecases.NewPaymentIntentUseCase(store.Orders(), stripe, cfg.Stripe.Currency, logger)
	webhookProcessor := usecases.NewWebhookProcessor(store, verifier, cfg.Stripe.WebhookSecret, publisher, logger)
	adminUseCase := usecases.NewAdminUseCase(store, productCache, publisher, logger)
	userAdminUseCase := usecases.NewUserAdminUseCase(store, productCache, logger)
	dashboardUseCase := usecases.NewDashboardUseCase(store.Orders(), logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.Router{
		Service:   cfg.Service,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
		Auth:      handlers.NewAuthHandler(authUseCase, tracer),
		Products:  handlers.NewProductHandler(catalogUseCase, tracer),
		Cart:      handlers.NewCartHandler(cartUseCase, tracer),
		Orders:    handlers.NewOrderHandler(checkoutUseCase, intentUseCase, tracer),
		Webhook:   handlers.NewWebhookHandler(webhookProcessor, tracer, logger),
		Admin:     handlers.NewAdminHandler(adminUseCase, tracer),
		Users:     handlers.NewUserAdminHandler(userAdminUseCase, tracer),
		Dashboard: handlers.NewDashboardHandler(dashboardUseCase, tracer),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 Storefront listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initPublisher conecta ao Kafka quando há brokers; sem eles os eventos são descartados
func initPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	brokers := cfg.Kafka.BrokerList()
	if len(brokers) == 0 {
		logger.Info("ℹ️ KAFKA_BROKERS vazio, eventos de domínio desativados")
		return events.NopPublisher{}
	}

	producer, err := events.NewSyncProducer(brokers)
	if err != nil {
		logger.Warn("⚠️ Kafka indisponível, eventos de domínio desativados", zap.Error(err))
		return events.NopPublisher{}
	}
	logger.Info("✅ Connected to Kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.Kafka.Topic))
	return events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
}

// initProductCache usa o Redis quando configurado; falhas na conexão desligam o cache
func initProductCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.ProductCache {
	if cfg.Redis.Addr == "" {
		return cache.NopProductCache{}
	}
	rdb, err := cache.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, logger)
	if err != nil {
		logger.Warn("⚠️ Redis indisponível, cache de produtos desativado", zap.Error(err))
		return cache.NopProductCache{}
	}
	return cache.NewRedisProductCache(rdb, cfg.Redis.ProductTTL)
}
