package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/email"
	"github.com/example/lastara-storefront/internal/infrastructure/kafka"
	"github.com/example/lastara-storefront/internal/logging"
	"github.com/example/lastara-storefront/internal/media"
	"github.com/example/lastara-storefront/internal/notification"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	// Dedicated consumer group so notifications see every event independently of projection
	cfg := config.LoadWorker("notifier")

	logger, err := logging.New("notifier", cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting notifier",
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("group", cfg.ConsumerGroup),
		zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
		zap.Bool("alerts", cfg.NotifyEmail != ""))

	destroyer := media.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger)
	alerts := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(destroyer, alerts, cfg.NotifyEmail, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup, logger)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
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
