package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/cache"
	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/infrastructure/kafka"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/logging"
	"github.com/example/lastara-storefront/internal/projection"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.LoadWorker("projector")

	logger, err := logging.New("projector", cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting projector",
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("group", cfg.ConsumerGroup))

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL (read DB)")

	listingCache := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.CacheTTL, logger)
	projector := projection.NewProjector(store.NewPostgresReadStore(db), listingCache, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup, logger)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-done:
	}

	cancel()
	<-done
}
