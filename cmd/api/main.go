package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban-board/configs"
	v1 "kanban-board/internal/api/v1"
	"kanban-board/internal/config"
	"kanban-board/pkg/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Muat konfigurasi
	cfg, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Inisialisasi logger
	log, err := logger.New(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("init loggers: %w", err)
	}
	defer func() {
		log.Sync()
		_ = log.Close()
	}()
	log.System.Info("Starting application",
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store),
		zap.String("time", time.Now().Format(time.RFC3339)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.Open(ctx, cfg, log)
	if err != nil {
		log.Error.Error("Failed to initialise dependencies", zap.Error(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := deps.Close(closeCtx); err != nil {
			log.Error.Error("Failed to close dependencies", zap.Error(err))
		}
	}()
	log.System.Info("Dependencies ready", zap.Bool("redis", deps.Redis != nil))

	app := v1.NewApp(deps)

	errCh := make(chan error, 1)
	go func() {
		log.System.Info("Application ready", zap.String("addr", cfg.ListenAddr()))
		errCh <- app.Listen(cfg.ListenAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error.Error("Application failed to start", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.System.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
