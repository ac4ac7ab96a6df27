package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/grid-feeds/app/build"
	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/fetch"
	"github.com/lysyi3m/grid-feeds/app/storage"
)

var _ TaskInterface = (*BuildFeedTask)(nil)

// BuildFeedTask runs the whole pipeline for one feed: fetch the catalog,
// normalize it, render every variant and store the artifacts.
type BuildFeedTask struct {
	Task
	FeedConfig *feed.FeedConfig
	Site       feed.SiteConfig
	fetcher    fetch.Fetcher
	normalizer *catalog.Normalizer
	builder    *build.Builder
	store      storage.Storage

	Stats catalog.NormalizeStats
	Files []string
}

func NewBuildFeedTask(feedConfig *feed.FeedConfig, site feed.SiteConfig, fetcher fetch.Fetcher, normalizer *catalog.Normalizer, builder *build.Builder, store storage.Storage) *BuildFeedTask {
	return &BuildFeedTask{
		Task:       NewTask(TaskTypeBuildFeed, feedConfig.Slug),
		FeedConfig: feedConfig,
		Site:       site,
		fetcher:    fetcher,
		normalizer: normalizer,
		builder:    builder,
		store:      store,
	}
}

func (t *BuildFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	products, stats, err := t.normalizer.Run(data)
	if err != nil {
		return fmt.Errorf("failed to normalize catalog: %w", err)
	}
	t.Stats = stats

	if stats.Dropped > 0 {
		slog.Warn("Dropped incomplete products", "feed", t.FeedName, "dropped", stats.Dropped, "total", stats.Total)
	}

	result, err := t.builder.Build(t.FeedConfig, t.Site, products)
	if err != nil {
		return fmt.Errorf("failed to build feed: %w", err)
	}

	if err := t.storeArtifacts(ctx, result); err != nil {
		return fmt.Errorf("failed to store artifacts: %w", err)
	}

	slog.Info("Task completed",
		"type", "BuildFeed",
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"products", len(products),
		"dropped", stats.Dropped,
		"variants", len(result.Variants))

	return nil
}

func (t *BuildFeedTask) fetchCatalog(ctx context.Context) ([]byte, error) {
	if t.FeedConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.FeedConfig.Timeout)
		defer cancel()
	}

	return t.fetcher.Fetch(ctx, t.FeedConfig.Source)
}

func (t *BuildFeedTask) storeArtifacts(ctx context.Context, result *build.Build) error {
	if err := t.put(ctx, result.ExportFileName, result.Export); err != nil {
		return err
	}

	for _, variant := range result.Variants {
		if err := t.put(ctx, variant.FileName, []byte(variant.Document)); err != nil {
			return err
		}
		slog.Debug("Variant written", "feed", t.FeedName, "file", variant.FileName, "per_row", variant.Width, "items", variant.Rows)
	}

	return nil
}

func (t *BuildFeedTask) put(ctx context.Context, key string, data []byte) error {
	if err := t.store.Put(ctx, key, data, storage.ContentType(key)); err != nil {
		return err
	}
	t.Files = append(t.Files, key)
	return nil
}
