package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/storage"
	"github.com/lysyi3m/grid-feeds/app/tasks"
)

type RebuilderInterface interface {
	Rebuild(ctx context.Context) (tasks.Report, error)
	LastReport() (tasks.Report, bool)
}

var _ RebuilderInterface = (*tasks.Rebuilder)(nil)

type Handler struct {
	configCache *feed.ConfigCache
	store       storage.Storage
	rebuilder   RebuilderInterface
	gatherer    prometheus.Gatherer
	version     string
}

type feedSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Enabled  bool     `json:"enabled"`
	Variants []string `json:"variants"`
	Export   string   `json:"export"`
	Preview  string   `json:"preview"`
}

type feedResultSummary struct {
	Slug     string   `json:"slug"`
	Skipped  bool     `json:"skipped,omitempty"`
	Products int      `json:"products"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}
