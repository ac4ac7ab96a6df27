package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/grid-feeds/app/build"
	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/fetch"
	"github.com/lysyi3m/grid-feeds/app/storage"
)

const DefaultWorkerCount = 1

type FeedResult struct {
	Slug     string
	TaskID   string
	Skipped  bool
	Products int
	Dropped  int
	Files    []string
	Duration time.Duration
	Err      error
}

type Report struct {
	RunID    string
	Results  []FeedResult // configuration order
	Duration time.Duration
}

func (r Report) Failed() []FeedResult {
	var failed []FeedResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

func (r Report) Built() int {
	built := 0
	for _, result := range r.Results {
		if !result.Skipped && result.Err == nil {
			built++
		}
	}
	return built
}

// Runner builds every configured feed once. A failing feed is reported and
// never stops the others.
type Runner struct {
	fetcher     fetch.Fetcher
	normalizer  *catalog.Normalizer
	builder     *build.Builder
	store       storage.Storage
	workerCount int
	metrics     *Metrics
}

func NewRunner(fetcher fetch.Fetcher, builder *build.Builder, store storage.Storage, workerCount int, metrics *Metrics) *Runner {
	if workerCount < 1 {
		workerCount = DefaultWorkerCount
	}

	return &Runner{
		fetcher:     fetcher,
		normalizer:  catalog.NewNormalizer(),
		builder:     builder,
		store:       store,
		workerCount: workerCount,
		metrics:     metrics,
	}
}

func (r *Runner) Run(ctx context.Context, site feed.SiteConfig, feeds []*feed.FeedConfig) Report {
	started := time.Now()
	report := Report{
		RunID:   uuid.NewString(),
		Results: make([]FeedResult, len(feeds)),
	}

	slog.Debug("Starting build run", "run_id", report.RunID, "feeds", len(feeds), "workers", r.workerCount)

	var g errgroup.Group
	g.SetLimit(r.workerCount)

	for i, feedConfig := range feeds {
		if !feedConfig.Enabled {
			slog.Debug("Feed disabled, skipping", "feed", feedConfig.Slug)
			report.Results[i] = FeedResult{Slug: feedConfig.Slug, Skipped: true}
			r.metrics.RecordFeed(report.Results[i])
			continue
		}

		g.Go(func() error {
			report.Results[i] = r.runFeed(ctx, site, feedConfig)
			r.metrics.RecordFeed(report.Results[i])
			return nil
		})
	}

	g.Wait()

	report.Duration = time.Since(started)
	r.metrics.RecordRun(report)

	slog.Info("Build run completed",
		"run_id", report.RunID,
		"feeds", len(feeds),
		"built", report.Built(),
		"failed", len(report.Failed()),
		"duration", report.Duration)

	return report
}

func (r *Runner) runFeed(ctx context.Context, site feed.SiteConfig, feedConfig *feed.FeedConfig) FeedResult {
	task := NewBuildFeedTask(feedConfig, site, r.fetcher, r.normalizer, r.builder, r.store)
	err := executeTask(ctx, task)

	return FeedResult{
		Slug:     feedConfig.Slug,
		TaskID:   task.GetID(),
		Products: task.Stats.Total - task.Stats.Dropped,
		Dropped:  task.Stats.Dropped,
		Files:    task.Files,
		Duration: task.GetDuration(),
		Err:      err,
	}
}

// executeTask starts the task clock, runs the task and logs a failure with
// the task's identity.
func executeTask(ctx context.Context, task TaskInterface) error {
	task.Start()

	slog.Debug("Executing task", "type", string(task.GetType()), "id", task.GetID(), "feed", task.GetFeedName())

	err := task.Execute(ctx)
	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "feed", task.GetFeedName(), "duration", task.GetDuration(), "error", err)
	}
	return err
}
