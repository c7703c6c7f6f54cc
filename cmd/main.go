package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/app"
	"github.com/niklvrr/ReviewerRotation/internal/config"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/db"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/notify"
	"github.com/niklvrr/ReviewerRotation/internal/transport"
	"github.com/niklvrr/ReviewerRotation/internal/transport/handler"
	"github.com/niklvrr/ReviewerRotation/internal/usecase/service"
	"github.com/niklvrr/ReviewerRotation/pkg/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Конфиг
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Логгер
	log, err := logger.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище
	var (
		repos   *service.Repositories
		pinger  handler.Pinger
		closeDB = func() error { return nil }
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("using in-memory storage, state is lost on restart")
		repos = app.MemoryRepositories(log)
	default:
		pool, err := db.NewDatabase(ctx, cfg.Database.URL, cfg.Database.MigrationsPath, log)
		if err != nil {
			return err
		}
		repos = app.PostgresRepositories(pool, log)
		pinger = pool
		closeDB = func() error {
			pool.Close()
			return nil
		}
	}

	// Уведомления
	var notifier service.Notifier = notify.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.RetryAttempts, log)
		log.Info("webhook notifications enabled", zap.Uint("retry_attempts", cfg.Notify.RetryAttempts))
	}

	// Сервер
	application := app.New(repos, notifier, pinger, cfg.App.RequestTimeout, log)
	server := transport.NewServer(cfg.App.Port, application.Handler, cfg.App.RequestTimeout, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-serverErr:
		if runErr != nil {
			log.Error("server failed", zap.Error(runErr))
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if errors.Is(shutdownErr, context.DeadlineExceeded) {
		log.Warn("shutdown timed out", zap.Duration("timeout", shutdownTimeout))
	}

	// Уведомления в полёте отправляются до закрытия пула
	drainErr := application.Drain(shutdownCtx)
	if drainErr != nil {
		log.Warn("notifications dropped on shutdown", zap.Error(drainErr))
	}

	return multierr.Combine(runErr, shutdownErr, drainErr, closeDB())
}
