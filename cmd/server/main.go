package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/confessit/config"
	"github.com/spacesedan/confessit/internal/clients"
	"github.com/spacesedan/confessit/internal/logging"
	"github.com/spacesedan/confessit/internal/monitoring"
	"github.com/spacesedan/confessit/internal/processing"
	"github.com/spacesedan/confessit/internal/server"
)

func main() {
	env := config.AppEnv()
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	fetcher, closeFetcher, err := clients.NewFetcher(cfg)
	if err != nil {
		slog.Error("[Main] Failed to create fetcher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeFetcher()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opts []server.Option
	if pinger, ok := fetcher.Source().(monitoring.Pinger); ok {
		sourceHealthy := &atomic.Bool{}
		go monitoring.MonitorSourceHealth(ctx, clockwork.NewRealClock(), pinger, sourceHealthy, cfg.HealthInterval)
		opts = append(opts, server.WithSourceHealth(sourceHealthy))
	}

	srv, err := server.New(":"+cfg.Port, fetcher, processing.NewAnalyzer(), opts...)
	if err != nil {
		slog.Error("[Main] Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	slog.Info("[Main] ConfessIt started",
		slog.String("env", env),
		slog.String("source", fetcher.SourceName()),
		slog.String("port", cfg.Port))

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-stopChan:
		slog.Info("Shutting down server gracefully...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
		}
	}
}
