package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SCRMS-FPT/court-booking-service/internal/app"
	"github.com/SCRMS-FPT/court-booking-service/internal/config"
	"github.com/SCRMS-FPT/court-booking-service/internal/db"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/logger"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/mq"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/obs"
)

const serviceName = "court-booking-service"

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.IsProduction(), cfg.LogLevel)

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracer")
	}

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DBDSN); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("database migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	containerCfg := app.Config{
		IsProduction:     cfg.IsProduction(),
		ProdOrigins:      cfg.ProdOrigins,
		DBPool:           pool,
		JWTSecret:        cfg.JWTSecret,
		JWTTTL:           cfg.JWTAccessTokenTTL,
		CacheTTL:         cfg.AvailabilityCacheTTL,
		BookingRateLimit: cfg.BookingRateLimit,
	}

	// Redis and RabbitMQ are optional; the service runs without cache or events.
	redisClient, err := db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("redis unavailable, availability cache disabled")
	case redisClient != nil:
		defer redisClient.Close()
		containerCfg.Redis = redisClient
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, booking events disabled")
		} else {
			defer publisher.Close()
			containerCfg.Publisher = publisher
		}
	}

	container, err := app.NewContainer(containerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	log.Info().Msg("server exited gracefully")
}
