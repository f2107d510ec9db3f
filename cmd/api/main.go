// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"creatorpulse/internal/adapter/cache"
	"creatorpulse/internal/adapter/events"
	"creatorpulse/internal/adapter/storage"
	"creatorpulse/internal/config"
	"creatorpulse/internal/domain/insight"
	"creatorpulse/internal/logging"
	"creatorpulse/internal/server"
	insightService "creatorpulse/internal/service/insight"
	"creatorpulse/internal/service/recommendation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	log := logging.ForService(logger, "api")

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, log)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	recommendationCache, closeCache, err := initCache(ctx, cfg, logging.ForService(logger, "cache"))
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer closeCache()

	// Initialize storage adapters
	postStore := storage.NewPostStore(db)
	if err := postStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare database schema: %v", err)
	}

	// Validated by config.Load
	loc, _ := cfg.Insight.Location()

	// Initialize services
	engine := insightService.NewEngine(insightService.EngineConfig{
		Location: loc,
		Logger:   logging.ForService(logger, "insight"),
	})

	recommendationService := recommendation.NewService(
		engine,
		postStore,
		recommendationCache,
		events.NewNATSPublisher(natsConn, cfg.NATS.EventsTopic),
		recommendation.ServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			Location: loc,
		},
		logging.ForService(logger, "recommendation"),
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		recommendationService,
		server.Options{
			Subscriber:  natsConn,
			EventsTopic: cfg.NATS.EventsTopic,
		},
		logging.ForService(logger, "http"),
	)

	// Start HTTP server
	go func() {
		log.Infof("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *logrus.Entry) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Initialize the recommendation cache for the configured backend
func initCache(ctx context.Context, cfg config.Config, log *logrus.Entry) (insight.Cache, func(), error) {
	if cfg.Cache.Backend != config.CacheBackendRedis {
		return cache.NewMemoryCache(), func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	redisCache := cache.NewBreakerCache(
		cache.NewRedisCache(client, cfg.Cache.KeyPrefix),
		cache.BreakerConfig{
			Name:             "redis-cache",
			FailureThreshold: uint32(cfg.Cache.BreakerFailures),
			OpenTimeout:      cfg.Cache.BreakerOpenTimeout,
		},
		log,
	)

	return redisCache, func() { client.Close() }, nil
}
