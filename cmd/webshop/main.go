package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/internal/service"
	"github.com/sakashimaa/webshop/internal/storage"
	httpTransport "github.com/sakashimaa/webshop/internal/transport/http"
	"github.com/sakashimaa/webshop/internal/transport/http/handler"
	"github.com/sakashimaa/webshop/internal/transport/http/middleware"
	kafkaTransport "github.com/sakashimaa/webshop/internal/transport/kafka"
	"github.com/sakashimaa/webshop/pkg/auth"
	"github.com/sakashimaa/webshop/pkg/config"
	"github.com/sakashimaa/webshop/pkg/db"
	"github.com/sakashimaa/webshop/pkg/kafka"
	"github.com/sakashimaa/webshop/pkg/metrics"
	outbox "github.com/sakashimaa/webshop/pkg/outbox/repository"
	"github.com/sakashimaa/webshop/pkg/outbox/worker"
	"github.com/sakashimaa/webshop/pkg/utils"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "webshop"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(config.LoggerConfig{
		Level:   cfg.Logger.Level,
		Env:     cfg.Env,
		Service: serviceName,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = utils.InitTracer(ctx, utils.TracerConfig{
			ServiceName: serviceName,
			Environment: cfg.Env,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Fatal("Error init tracer", zap.Error(err))
		}
	}

	if cfg.Postgres.MigrateOnStart {
		if err := db.MigrateUp(cfg.Postgres.MigrationsPath, cfg.Postgres.URL, logger); err != nil {
			logger.Fatal("Error applying migrations", zap.Error(err))
		}
	}

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("Error creating postgres pool", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("Error connecting to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	validate := utils.NewValidator()
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.AccessTTL)

	outboxRepository := outbox.NewOutboxRepository()
	userRepository := repository.NewUserRepository(pool, logger)
	productRepository := repository.NewProductRepository(pool, logger)
	orderRepository := repository.NewOrderRepository(pool, logger)

	catalogService := service.NewCachedCatalogService(
		service.NewCatalogService(productRepository, outboxRepository, pool, logger),
		rdb,
		cfg.Catalog.CacheTTL,
		logger,
	)
	basketService := service.NewBasketService(catalogService)
	orderService := service.NewOrderService(pool, logger, orderRepository, outboxRepository)
	authService := service.NewAuthService(userRepository, tokens, logger)

	var kafkaProducer kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer, err = kafka.NewProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			logger.Fatal("Error creating kafka producer", zap.Error(err))
		}

		outboxProcessor := worker.NewOutboxProcessor(
			pool,
			outboxRepository,
			kafkaProducer,
			logger,
			worker.WithBatchSize(cfg.Outbox.BatchSize),
			worker.WithInterval(cfg.Outbox.Interval),
		)
		go outboxProcessor.Start(ctx)

		consumer := kafkaTransport.NewConsumer(catalogService, logger)
		go func() {
			if err := consumer.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup); err != nil {
				logger.Error("Catalog cache consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("Kafka disabled, outbox events stay unpublished")
	}

	sessions := storage.NewSessionStore(cfg.Redis, cfg.Session, cfg.Env == "prod")

	serverMetrics := metrics.NewServerMetrics(serviceName)

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(serverMetrics.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	prefix := strings.TrimSuffix(cfg.HTTP.Prefix, "/")

	handlers := &httpTransport.Handlers{
		Auth:    handler.NewAuthHandler(authService, validate, logger, cfg.Auth.CookieName, tokens.TTL(), cfg.Env == "prod"),
		Product: handler.NewProductHandler(catalogService, validate, logger, cfg.HTTP.Timeout, prefix),
		Basket:  handler.NewBasketHandler(basketService, orderService, sessions, validate, logger, cfg.HTTP.Timeout, prefix),
		Order:   handler.NewOrderHandler(orderService, validate, logger, cfg.HTTP.Timeout, prefix),
	}

	httpTransport.RegisterRoutes(app, prefix, handlers, middleware.NewActorMiddleware(authService, cfg.Auth.CookieName, logger))

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Port,
		Handler:           serverMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", cfg.Metrics.Port))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("HTTP service listening", zap.String("addr", cfg.HTTP.Port), zap.String("prefix", prefix))
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Fatal("Error listening HTTP", zap.String("addr", cfg.HTTP.Port), zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down metrics server", zap.Error(err))
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("Error closing kafka producer", zap.Error(err))
		}
	}

	if err := sessions.Storage.Close(); err != nil {
		logger.Error("Error closing session storage", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		logger.Error("Error closing redis client", zap.Error(err))
	}

	pool.Close()

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error stopping telemetry", zap.Error(err))
		}
	}

	logger.Info("Stopped")
}
