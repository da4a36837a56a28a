package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/kasikota/internal/basket"
	"github.com/fjod/kasikota/internal/catalog"
	"github.com/fjod/kasikota/internal/checkout"
	"github.com/fjod/kasikota/internal/clock"
	"github.com/fjod/kasikota/internal/config"
	"github.com/fjod/kasikota/internal/events"
	"github.com/fjod/kasikota/internal/handoff"
	h "github.com/fjod/kasikota/internal/http"
	"github.com/fjod/kasikota/internal/logger"
	"github.com/fjod/kasikota/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const mongoCollection = "baskets"

// closers run in reverse order on shutdown
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// W3C trace context for incoming requests
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var cleanup closers
	defer func() { cleanup.run() }()

	ctx := context.Background()

	durable, err := durableStore(ctx, cfg, log, &cleanup)
	if err != nil {
		log.Error("failed to set up durable storage", "backend", cfg.DurableBackend, "error", err)
		cleanup.run()
		os.Exit(1)
	}
	session, err := sessionStore(ctx, cfg, log, &cleanup)
	if err != nil {
		log.Error("failed to set up session storage", "backend", cfg.SessionBackend, "error", err)
		cleanup.run()
		os.Exit(1)
	}

	source, err := catalogSource(cfg, log, &cleanup)
	if err != nil {
		log.Error("failed to set up catalog", "source", cfg.CatalogSource, "error", err)
		cleanup.run()
		os.Exit(1)
	}
	cat := catalog.NewService(source, log)

	var publisher checkout.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		cleanup.add(func() { _ = kp.Close() })
		publisher = kp
		log.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	clk := clock.NewSystem()
	b := basket.NewStore(durable, basket.Fanout{basket.NewLogNotifier(log), h.FlashNotifier()}, log)
	slot := handoff.New(session, log)
	numbers := handoff.NewOrderNumbers(clk, nil)
	svc := checkout.NewService(b, slot, publisher, clk, log)

	router := h.NewRouter(h.RouterConfig{
		ServiceName:    cfg.ServiceName,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
	}, h.Handlers{
		Catalog:      h.NewCatalogHandler(cat),
		Basket:       h.NewBasketHandler(b, cat),
		Checkout:     h.NewCheckoutHandler(svc),
		Confirmation: h.NewConfirmationHandler(slot, b, numbers, log),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

func durableStore(ctx context.Context, cfg *config.Config, log *slog.Logger, c *closers) (storage.Store, error) {
	var st storage.Store

	switch cfg.DurableBackend {
	case config.BackendSQLite:
		sqliteStore, err := storage.NewSQLiteStore(cfg.DurableDBPath)
		if err != nil {
			return nil, err
		}
		c.add(func() { _ = sqliteStore.Close() })

		if err := sqliteStore.RunMigrations(); err != nil {
			return nil, fmt.Errorf("storage migrations failed: %w", err)
		}
		log.Info("durable storage on sqlite", "path", cfg.DurableDBPath)
		st = sqliteStore
	case config.BackendMemory:
		log.Warn("durable storage is in memory, baskets will not survive a restart")
		mem := storage.NewMemoryStore()
		c.add(mem.Close)
		st = mem
	case config.BackendRedis:
		client, err := connectRedis(ctx, cfg, c)
		if err != nil {
			return nil, err
		}
		st = storage.NewRedisStore(client, "durable", 0)
	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		c.add(func() { _ = db.Client().Disconnect(context.Background()) })

		mongoStore := storage.NewMongoStore(db, mongoCollection)
		if err := mongoStore.CreateIndexes(ctx, cfg.MongoRecordTTL); err != nil {
			log.Warn("could not create basket indexes", "error", err)
		}
		log.Info("connected to MongoDB", "uri", cfg.MongoURI)
		st = mongoStore
	default:
		return nil, fmt.Errorf("unknown durable backend %q", cfg.DurableBackend)
	}

	return storage.NewBreakerStore(st, storage.BreakerSettings{Name: "durable"}, log), nil
}

func sessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger, c *closers) (storage.Store, error) {
	var st storage.Store

	switch cfg.SessionBackend {
	case config.BackendMemory:
		mem := storage.NewMemoryStore(storage.WithTTL(cfg.SessionTTL))
		c.add(mem.Close)
		st = mem
	case config.BackendRedis:
		client, err := connectRedis(ctx, cfg, c)
		if err != nil {
			return nil, err
		}
		st = storage.NewRedisStore(client, "session", cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	return storage.NewBreakerStore(st, storage.BreakerSettings{Name: "session"}, log), nil
}

func connectRedis(ctx context.Context, cfg *config.Config, c *closers) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	c.add(func() { _ = client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func catalogSource(cfg *config.Config, log *slog.Logger, c *closers) (catalog.Source, error) {
	switch cfg.CatalogSource {
	case config.CatalogEmbedded:
		return catalog.Embedded(), nil
	case config.CatalogSQLite:
		repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
		if err != nil {
			return nil, err
		}
		c.add(func() { _ = repo.Close() })

		if err := repo.RunMigrations(); err != nil {
			return nil, fmt.Errorf("catalog migrations failed: %w", err)
		}
		log.Info("catalog loaded from sqlite", "path", cfg.CatalogDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}
