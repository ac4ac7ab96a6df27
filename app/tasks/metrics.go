package tasks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const PushJobName = "grid_feeds_build"

// Metrics lives in its own registry so a one-shot build can push exactly
// what it recorded. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FeedsTotal         *prometheus.CounterVec
	ProductsTotal      prometheus.Counter
	DroppedTotal       prometheus.Counter
	ArtifactsTotal     prometheus.Counter
	FeedDuration       prometheus.Histogram
	LastRunTimestamp   prometheus.Gauge
	LastRunFailedFeeds prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FeedsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grid_feeds_feeds_total",
			Help: "Feeds processed, by outcome.",
		}, []string{"status"}),
		ProductsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_feeds_products_total",
			Help: "Products rendered across all feeds.",
		}),
		DroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_feeds_products_dropped_total",
			Help: "Catalog records dropped for missing id, title or link.",
		}),
		ArtifactsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_feeds_artifacts_written_total",
			Help: "RSS and JSON files written.",
		}),
		FeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grid_feeds_feed_duration_seconds",
			Help:    "Time to build one feed.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grid_feeds_last_run_timestamp_seconds",
			Help: "Unix time the last build run finished.",
		}),
		LastRunFailedFeeds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grid_feeds_last_run_failed_feeds",
			Help: "Feeds that failed in the last build run.",
		}),
	}

	m.registry.MustRegister(
		m.FeedsTotal,
		m.ProductsTotal,
		m.DroppedTotal,
		m.ArtifactsTotal,
		m.FeedDuration,
		m.LastRunTimestamp,
		m.LastRunFailedFeeds,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordFeed(result FeedResult) {
	if m == nil {
		return
	}

	switch {
	case result.Skipped:
		m.FeedsTotal.WithLabelValues("skipped").Inc()
		return
	case result.Err != nil:
		m.FeedsTotal.WithLabelValues("failed").Inc()
	default:
		m.FeedsTotal.WithLabelValues("built").Inc()
		// only published products count
		m.ProductsTotal.Add(float64(result.Products))
		m.DroppedTotal.Add(float64(result.Dropped))
	}

	m.ArtifactsTotal.Add(float64(len(result.Files)))
	m.FeedDuration.Observe(result.Duration.Seconds())
}

func (m *Metrics) RecordRun(report Report) {
	if m == nil {
		return
	}
	m.LastRunTimestamp.SetToCurrentTime()
	m.LastRunFailedFeeds.Set(float64(len(report.Failed())))
}

// Push sends the registry to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, gatewayURL string) error {
	if m == nil || gatewayURL == "" {
		return nil
	}

	if err := push.New(gatewayURL, PushJobName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
