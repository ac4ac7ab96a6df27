package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/grid-feeds/app/api"
	"github.com/lysyi3m/grid-feeds/app/build"
	"github.com/lysyi3m/grid-feeds/app/cfg"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/fetch"
	"github.com/lysyi3m/grid-feeds/app/storage"
	"github.com/lysyi3m/grid-feeds/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting grid-feeds preview server", "version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configCache := feed.NewConfigCache(appCfg.ConfigFile)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load configuration", "file", appCfg.ConfigFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Configuration loaded", "feeds", configCache.GetFeedCount())

	store, err := storage.FromConfig(ctx, appCfg.StorageConfig())
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", appCfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	metrics := tasks.NewMetrics()
	runner := tasks.NewRunner(
		fetch.NewHTTPFetcher(&http.Client{}, appCfg.UserAgent),
		build.NewBuilder(appCfg.Version),
		store.Storage,
		appCfg.WorkerCount,
		metrics,
	)
	rebuilder := tasks.NewRebuilder(configCache, runner)

	if appCfg.RebuildSchedule != "" {
		c := cron.New(cron.WithLocation(time.Local))
		_, err := c.AddFunc(appCfg.RebuildSchedule, func() {
			if _, err := rebuilder.Rebuild(ctx); err != nil {
				slog.Error("Scheduled rebuild failed", "error", err)
				return
			}
			if err := metrics.Push(ctx, appCfg.PushgatewayURL); err != nil {
				slog.Warn("Failed to push metrics", "error", err)
			}
		})
		if err != nil {
			slog.Error("Failed to schedule rebuilds", "schedule", appCfg.RebuildSchedule, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		slog.Info("Rebuild scheduled", "schedule", appCfg.RebuildSchedule)
	}

	handler := api.NewHandler(configCache, store.Storage, rebuilder, metrics.Registry(), appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
