package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/lysyi3m/grid-feeds/app/feed"
)

// Rebuilder reloads the feeds configuration and runs a full build. Runs are
// serialized; a second caller waits for the first to finish.
type Rebuilder struct {
	configCache *feed.ConfigCache
	runner      *Runner

	runMu sync.Mutex

	mu   sync.RWMutex
	last *Report
}

func NewRebuilder(configCache *feed.ConfigCache, runner *Runner) *Rebuilder {
	return &Rebuilder{
		configCache: configCache,
		runner:      runner,
	}
}

func (r *Rebuilder) Rebuild(ctx context.Context) (Report, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if err := r.configCache.Run(); err != nil {
		return Report{}, fmt.Errorf("failed to load feeds configuration: %w", err)
	}

	report := r.runner.Run(ctx, r.configCache.GetSite(), r.configCache.GetFeeds())

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()

	return report, nil
}

func (r *Rebuilder) LastReport() (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}
