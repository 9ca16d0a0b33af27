package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/consumers"
	"github.com/frostvault/frostvault-backend/internal/warehouse/events"
	"github.com/frostvault/frostvault-backend/internal/warehouse/handler"
	"github.com/frostvault/frostvault-backend/internal/warehouse/repository"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/cache"
	"github.com/frostvault/frostvault-backend/pkg/config"
	"github.com/frostvault/frostvault-backend/pkg/database"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const serviceName = "warehouse-service"

func main() {
	migrate := flag.Bool("migrate", false, "apply the database schema before serving")
	flag.Parse()

	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Warehouse Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *migrate {
		if err := repository.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		log.Info().Msg("database schema is up to date")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to RabbitMQ. Without a broker the service runs and drops events.
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.WarehouseEventPublisher
	)
	if cfg.RabbitMQ.URL != "" {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewWarehouseEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Warn().Msg("RabbitMQ not configured, warehouse events are disabled")
	}

	// Connect to Redis for the live temperature feed
	var (
		redisClient *cache.Redis
		feed        *events.LiveFeed
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.New(&cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()

		feed = events.NewLiveFeed(redisClient, cfg.Redis.Channel, log)
	}

	// Initialize store and service
	store := repository.NewPostgresStore(db, log)
	warehouseService := service.NewWarehouseService(store, publisher, feed, service.SettingsFromConfig(cfg.Warehouse), log)

	// Start sensor event consumer
	if rmq != nil {
		sensorConsumer, err := consumers.NewSensorEventConsumer(rmq, warehouseService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create sensor event consumer")
		}
		if err := sensorConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start sensor event consumer")
		}
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Operator)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", httputil.OperatorHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			status["rabbitmq"] = rmq.Health()
		}
		if redisClient != nil {
			status["redis"] = redisClient.Health(r.Context())
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	// API routes
	handler.Mount(r, warehouseService, log)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
