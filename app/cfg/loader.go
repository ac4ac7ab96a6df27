package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Build configuration
	ConfigFile  string `long:"config" env:"CONFIG_FILE" default:"./feeds.yml" description:"Feeds configuration file"`
	OutputDir   string `long:"output-dir" env:"OUTPUT_DIR" default:"./public" description:"Directory generated feeds are written to (local storage)"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of feeds built concurrently"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"grid-feeds/1.0" description:"User agent string for catalog requests"`

	// Storage configuration
	StorageDriver string `long:"storage" env:"STORAGE_DRIVER" default:"local" choice:"local" choice:"s3" description:"Where generated feeds are published"`
	S3Region      string `long:"s3-region" env:"S3_REGION" description:"S3 region"`
	S3Bucket      string `long:"s3-bucket" env:"S3_BUCKET" description:"S3 bucket"`
	S3Prefix      string `long:"s3-prefix" env:"S3_PREFIX" default:"feeds" description:"Key prefix inside the bucket"`
	S3Endpoint    string `long:"s3-endpoint" env:"S3_ENDPOINT" description:"Endpoint for S3-compatible services"`
	CacheControl  string `long:"cache-control" env:"CACHE_CONTROL" default:"public, max-age=300" description:"Cache-Control header for uploaded feeds"`

	// Observability
	PushgatewayURL string `long:"pushgateway-url" env:"PUSHGATEWAY_URL" description:"Prometheus Pushgateway URL (optional)"`

	// Preview server
	Port            string `long:"port" env:"PORT" default:"8080" description:"Preview server port"`
	RebuildSchedule string `long:"rebuild-schedule" env:"REBUILD_SCHEDULE" description:"Cron schedule for rebuilding feeds from the preview server (optional)"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for triggering rebuilds (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Amsterdam)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigFile:      raw.ConfigFile,
		OutputDir:       raw.OutputDir,
		WorkerCount:     max(raw.WorkerCount, 1),
		UserAgent:       raw.UserAgent,
		StorageDriver:   raw.StorageDriver,
		S3Region:        raw.S3Region,
		S3Bucket:        raw.S3Bucket,
		S3Prefix:        raw.S3Prefix,
		S3Endpoint:      raw.S3Endpoint,
		CacheControl:    raw.CacheControl,
		PushgatewayURL:  raw.PushgatewayURL,
		Port:            raw.Port,
		RebuildSchedule: raw.RebuildSchedule,
		APIAccessKey:    raw.APIAccessKey,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := ValidateSchedule(cfg.RebuildSchedule); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// ValidateSchedule accepts an empty schedule (rebuilds disabled) or a
// standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid rebuild schedule '%s': %w", schedule, err)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
		slog.Debug("Timezone configured", "timezone", timezone)
	}
	return nil
}
