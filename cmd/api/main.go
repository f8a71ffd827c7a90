package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lastbite/internal/auth"
	"lastbite/internal/backend"
	"lastbite/internal/cart"
	"lastbite/internal/checkout"
	"lastbite/internal/config"
	"lastbite/internal/database"
	"lastbite/internal/events"
	"lastbite/internal/handler"
	"lastbite/internal/repository"
	"lastbite/internal/router"
	"lastbite/internal/voucher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting lastbite API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize checkout journal
	journal := repository.NewCheckoutRepository(pool, logger)

	// Initialize cart snapshotter (optional)
	var snapshotter cart.Snapshotter
	if cfg.Redis.Enabled {
		ttl := time.Duration(cfg.Redis.SnapshotTTLH) * time.Hour
		snapshotter, err = cart.NewRedisSnapshotter(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect to redis, cart snapshots disabled")
			snapshotter = nil
		} else {
			defer snapshotter.Close()
		}
	} else {
		logger.Info().Msg("cart snapshots disabled (redis not configured)")
	}

	// Initialize cart store
	carts := cart.NewStore(snapshotter, logger)

	// Initialize voucher validator (optional)
	var vouchers voucher.Validator
	if cfg.Voucher.Enabled {
		var loader voucher.Loader
		if cfg.Voucher.S3Enabled {
			s3Loader, err := voucher.NewS3Loader(ctx, cfg.Voucher.S3Bucket, cfg.Voucher.S3Region, cfg.Voucher.S3Prefix, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system")
				loader = voucher.NewFileLoader(logger)
			} else {
				loader = s3Loader
			}
		} else {
			loader = voucher.NewFileLoader(logger)
		}

		vouchers, err = voucher.NewValidator(ctx, cfg.Voucher.FilePaths, loader, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize voucher validator: %w", err)
		}
		defer vouchers.Close()
	}

	// Initialize event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		publisher = events.NoopPublisher{}
		logger.Info().Msg("checkout events disabled (kafka not configured)")
	}
	defer publisher.Close()

	// Initialize upstream marketplace client
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, logger)

	// Initialize checkout service
	checkoutService := checkout.NewService(carts, backendClient, vouchers, journal, publisher, logger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(carts, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)

	// Initialize auth manager and router
	authManager := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpiryMins)*time.Minute)
	mux := router.New(cartHandler, checkoutHandler, authManager, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
