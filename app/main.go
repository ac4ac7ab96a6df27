package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/grid-feeds/app/build"
	"github.com/lysyi3m/grid-feeds/app/cfg"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/fetch"
	"github.com/lysyi3m/grid-feeds/app/storage"
	"github.com/lysyi3m/grid-feeds/app/tasks"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute returns the process exit code. Deferred cleanup runs before main
// exits with it.
func execute(args []string) int {
	appCfg, err := cfg.LoadArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if appCfg == nil {
		// help was shown
		return 0
	}

	setupLogger(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, appCfg)
}

// run performs one build. Per-feed failures are logged by the runner and
// leave the exit code at 0.
func run(ctx context.Context, appCfg *cfg.Cfg) int {
	slog.Info("Starting build", "version", appCfg.Version, "config", appCfg.ConfigFile, "workers", appCfg.WorkerCount)

	store, err := storage.FromConfig(ctx, appCfg.StorageConfig())
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", appCfg.StorageDriver, "error", err)
		return 1
	}
	slog.Debug("Storage initialized", "driver", store.Driver, "storage", store.Storage)

	metrics := tasks.NewMetrics()
	runner := tasks.NewRunner(
		fetch.NewHTTPFetcher(&http.Client{}, appCfg.UserAgent),
		build.NewBuilder(appCfg.Version),
		store.Storage,
		appCfg.WorkerCount,
		metrics,
	)

	report, err := tasks.NewRebuilder(feed.NewConfigCache(appCfg.ConfigFile), runner).Rebuild(ctx)
	if err != nil {
		slog.Error("Failed to load configuration", "file", appCfg.ConfigFile, "error", err)
		return 1
	}

	for _, result := range report.Failed() {
		slog.Warn("Feed not updated", "feed", result.Slug, "error", result.Err)
	}

	if err := metrics.Push(ctx, appCfg.PushgatewayURL); err != nil {
		slog.Warn("Failed to push metrics", "url", appCfg.PushgatewayURL, "error", err)
	}

	return 0
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
