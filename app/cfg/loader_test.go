package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		t.Logf("Version: %s", version)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")

	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ConfigFile != "./feeds.yml" {
		t.Errorf("Expected config file './feeds.yml', got '%s'", cfg.ConfigFile)
	}
	if cfg.OutputDir != "./public" {
		t.Errorf("Expected output dir './public', got '%s'", cfg.OutputDir)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected worker count 1, got %d", cfg.WorkerCount)
	}
	if cfg.StorageDriver != "local" {
		t.Errorf("Expected storage driver 'local', got '%s'", cfg.StorageDriver)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.PushgatewayURL != "" {
		t.Errorf("Expected no pushgateway by default, got '%s'", cfg.PushgatewayURL)
	}
	if cfg.Version != GetVersion() {
		t.Errorf("Expected version '%s', got '%s'", GetVersion(), cfg.Version)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/etc/grid/feeds.yml")
	t.Setenv("OUTPUT_DIR", "/srv/feeds")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "grid-feeds")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("REBUILD_SCHEDULE", "*/15 * * * *")
	t.Setenv("DEBUG", "true")
	t.Setenv("TZ", "UTC")

	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ConfigFile != "/etc/grid/feeds.yml" {
		t.Errorf("Expected config file from env, got '%s'", cfg.ConfigFile)
	}
	if cfg.OutputDir != "/srv/feeds" {
		t.Errorf("Expected output dir from env, got '%s'", cfg.OutputDir)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.StorageDriver != "s3" || cfg.S3Region != "eu-west-1" || cfg.S3Bucket != "grid-feeds" {
		t.Errorf("Unexpected storage settings: %s %s %s", cfg.StorageDriver, cfg.S3Region, cfg.S3Bucket)
	}
	if cfg.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("Expected pushgateway URL from env, got '%s'", cfg.PushgatewayURL)
	}
	if cfg.RebuildSchedule != "*/15 * * * *" {
		t.Errorf("Expected rebuild schedule from env, got '%s'", cfg.RebuildSchedule)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")

	cfg, err := LoadArgs([]string{"--worker-count", "0", "--output-dir", "/tmp/out"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected worker count to be clamped to 1, got %d", cfg.WorkerCount)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("Expected output dir '/tmp/out', got '%s'", cfg.OutputDir)
	}
}

func TestValidateSchedule(t *testing.T) {
	valid := []string{"", "*/15 * * * *", "0 6 * * 1-5", "@hourly"}
	for _, schedule := range valid {
		if err := ValidateSchedule(schedule); err != nil {
			t.Errorf("Expected '%s' to be valid, got: %v", schedule, err)
		}
	}

	invalid := []string{"every hour", "* * *", "61 * * * *"}
	for _, schedule := range invalid {
		if err := ValidateSchedule(schedule); err == nil {
			t.Errorf("Expected '%s' to be rejected", schedule)
		}
	}
}

func TestStorageConfig(t *testing.T) {
	cfg := &Cfg{
		StorageDriver: "s3",
		OutputDir:     "./public",
		S3Region:      "eu-west-1",
		S3Bucket:      "grid-feeds",
		S3Prefix:      "feeds",
	}

	storageCfg := cfg.StorageConfig()
	if storageCfg.Driver != "s3" || storageCfg.S3Bucket != "grid-feeds" || storageCfg.OutputDir != "./public" {
		t.Errorf("Unexpected storage config: %+v", storageCfg)
	}
}
