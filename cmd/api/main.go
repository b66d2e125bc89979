package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/api"
	"github.com/example/lastara-storefront/internal/auth"
	"github.com/example/lastara-storefront/internal/cache"
	"github.com/example/lastara-storefront/internal/captcha"
	"github.com/example/lastara-storefront/internal/command"
	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/infrastructure/kafka"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/example/lastara-storefront/internal/logging"
	"github.com/example/lastara-storefront/internal/maintenance"
	"github.com/example/lastara-storefront/internal/projection"
	"github.com/example/lastara-storefront/internal/query"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("api", cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.API, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting catalog store",
		zap.String("port", cfg.Port),
		zap.String("projection", cfg.ProjectionMode),
		zap.Bool("memory_store", cfg.UsesMemoryStore()),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic))

	listingCache := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.CacheTTL, logger)

	// Read side
	var (
		db        *sql.DB
		readStore store.ReadStoreInterface
	)
	if cfg.UsesMemoryStore() {
		readStore = store.NewReadStore()
	} else {
		var err error
		db, err = store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		logger.Info("connected to PostgreSQL")
		readStore = store.NewPostgresReadStore(db)
	}
	projector := projection.NewProjector(readStore, listingCache, logger)

	// Write side: inline mode projects on append, async mode publishes to Kafka
	var publisher store.Publisher = projector
	if cfg.ProjectionMode == config.ProjectionAsync {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
	}

	var eventStore store.EventStoreInterface
	if db != nil {
		eventStore = store.NewPostgresEventStore(db, publisher, logger)
	} else {
		eventStore = store.NewEventStore(publisher)
	}

	// Rebuild read models from the event log
	if err := projector.Replay(ctx, eventStore.GetAllEvents()); err != nil {
		return err
	}

	var wg sync.WaitGroup
	if cfg.ProjectionMode == config.ProjectionAsync {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "api-projector", logger)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("starting kafka consumer (async projection)")
			if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
				logger.Error("projection consumer stopped", zap.Error(err))
			}
		}()
	}

	operatorSvc := operator.NewService(eventStore)
	cmdHandler := command.NewHandler(
		product.NewService(eventStore),
		slide.NewService(eventStore),
		subscription.NewService(eventStore),
		operatorSvc,
		captcha.New(cfg.RecaptchaSecret, cfg.RecaptchaMinScore, logger),
		readStore,
		logger,
	)
	queryHandler := query.NewHandler(readStore, listingCache, logger)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := cmdHandler.SeedOperator(ctx, command.SeedOperator{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Name:     cfg.AdminName,
		})
		if err != nil {
			return fmt.Errorf("failed to seed operator: %w", err)
		}
		if created {
			logger.Info("seeded operator", zap.String("email", operator.NormalizeEmail(cfg.AdminEmail)))
		}
	}

	scheduler := maintenance.NewScheduler(logger)
	if err := scheduler.Register(maintenance.SessionPurgeJob(cfg.SessionPurgeSchedule, readStore, logger)); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(cmdHandler, queryHandler, logger),
		AuthHandlers: api.NewAuthHandlers(operatorSvc, queryHandler, jwtService, cfg.SecureCookies, logger),
		JWTService:   jwtService,
		Operators:    queryHandler,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
		logger.Error("server error", zap.Error(runErr))
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	wg.Wait()
	return runErr
}
