package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/cache"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/database"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/handlers"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/jobs"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/log"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/server"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	if err := database.RunMigration(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	evidenceStore, err := storage.NewEvidenceStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init evidence store")
	}
	if err := evidenceStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure evidence bucket failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, evidenceStore, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(
		repository.NewSessionRepository(dbPool),
		repository.NewNotificationRepository(dbPool),
		cfg,
		logger,
	)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		cancel := scheduler.Stop()
		cancel()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
