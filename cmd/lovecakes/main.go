package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sonuudigital/lovecakes/internal/auth"
	"github.com/sonuudigital/lovecakes/internal/cache"
	"github.com/sonuudigital/lovecakes/internal/config"
	"github.com/sonuudigital/lovecakes/internal/database"
	"github.com/sonuudigital/lovecakes/internal/events"
	"github.com/sonuudigital/lovecakes/internal/events/worker"
	"github.com/sonuudigital/lovecakes/internal/handlers"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/metrics"
	"github.com/sonuudigital/lovecakes/internal/middlewares"
	"github.com/sonuudigital/lovecakes/internal/rabbitmq"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
	"github.com/sonuudigital/lovecakes/internal/router"
	"github.com/sonuudigital/lovecakes/internal/web"
	"github.com/sonuudigital/lovecakes/internal/web/health"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	serviceName         = "lovecakes"
	pingTimeout         = 3 * time.Second
	healthProbeInterval = 10 * time.Second
)

func main() {
	foundDotEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logs.NewSlogLogger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logs.NewSlogLoggerWithLevel(os.Stdout, cfg.LogLevel)
	if foundDotEnv {
		logger.Info("loaded environment variables from .env file")
	} else {
		logger.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgDb, err := database.InitializePostgresDB(ctx, cfg.DatabaseURL, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Error("error connecting to database", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected successfully")
	defer pgDb.Close()

	redisClient, err := initializeRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("error connecting to redis", "error", err)
		os.Exit(1)
	}
	logger.Info("redis connected successfully")
	defer redisClient.Close()

	if err := run(ctx, cfg, logger, pgDb, redisClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("application shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *logs.SlogLogger, pgDb *pgxpool.Pool, redisClient *redis.Client) error {
	reg := metrics.NewRegistry()

	validator, err := initializeValidator(cfg)
	if err != nil {
		return err
	}

	rateLimiter := middlewares.NewRateLimiterMiddleware(logger, map[middlewares.ClientTier]middlewares.RateLimitConfig{
		middlewares.AnonymousClient: {
			Rate:  rate.Limit(cfg.AnonRateLimit.RPS),
			Burst: cfg.AnonRateLimit.Burst,
		},
		middlewares.AuthenticatedClient: {
			Rate:  rate.Limit(cfg.AuthRateLimit.RPS),
			Burst: cfg.AuthRateLimit.Burst,
		},
	}, redis_rate.NewLimiter(redisClient), cfg.RateLimitEnabled)

	h := handlers.NewHandler(
		logger,
		postgres.NewCatalogRepository(pgDb),
		postgres.NewCartRepository(pgDb),
		cache.New(redisClient, cfg.CacheTTL, logger, reg),
		reg,
	)

	healthHandler := handlers.NewHealthHandler(logger, map[string]handlers.HealthCheck{
		"postgres": pgDb.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	mux, err := router.New(router.Dependencies{
		Logger:      logger,
		Handler:     h,
		Health:      healthHandler,
		Validator:   validator,
		RateLimiter: rateLimiter,
		Metrics:     reg,
	})
	if err != nil {
		return err
	}

	srv, err := web.InitializeServer(cfg.Port, mux)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return web.StartServerAndWaitForShutdown(gCtx, srv, logger)
	})

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(logger, cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer mq.Close()

		relayer := worker.NewOutboxRelayer(
			logger,
			events.NewTopicPublisher(mq),
			postgres.NewOutboxRepository(pgDb),
			reg,
			cfg.OutboxPollInterval,
			cfg.OutboxBatchSize,
		)
		g.Go(func() error {
			relayer.Start(gCtx)
			return nil
		})
	} else {
		logger.Warn("RABBITMQ_URL is not set, cart events stay in the outbox")
	}

	if cfg.GRPCHealthPort != "" {
		healthServer := health.NewServer(serviceName, func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			if err := pgDb.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		}, healthProbeInterval, logger)

		g.Go(func() error {
			return healthServer.Serve(gCtx, cfg.GRPCHealthPort)
		})
	}

	return g.Wait()
}

func initializeRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func initializeValidator(cfg *config.Config) (*auth.JWTManager, error) {
	publicKey, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key: %w", err)
	}
	return auth.NewJWTValidator(publicKey, cfg.JWTIssuer, cfg.JWTAudience)
}
