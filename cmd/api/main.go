package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobdesk/api/internal/cache"
	"jobdesk/api/internal/config"
	"jobdesk/api/internal/database"
	"jobdesk/api/internal/handlers"
	"jobdesk/api/internal/jobs"
	"jobdesk/api/internal/log"
	"jobdesk/api/internal/server"
	"jobdesk/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("ensure resume bucket")
	}
	cancel()

	handlerSet := handlers.NewHandlerSet(logger, pool, redisClient, objectStore, cfg)

	scheduler := jobs.NewScheduler(handlerSet.JobService(), logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}

	srv := server.New(cfg, logger, handlerSet)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	scheduler.Stop()
	pool.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close")
	}

	logger.Info().Msg("server stopped")
}
