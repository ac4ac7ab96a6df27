package storage

import (
	"context"
	"fmt"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

type Config struct {
	Driver       string
	OutputDir    string
	S3Region     string
	S3Bucket     string
	S3Prefix     string
	S3Endpoint   string
	CacheControl string
}

type FactoryResult struct {
	Driver  string
	Storage Storage
}

func FromConfig(ctx context.Context, cfg Config) (FactoryResult, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverLocal
	}

	switch driver {
	case DriverLocal:
		if cfg.OutputDir == "" {
			return FactoryResult{}, fmt.Errorf("local storage requires an output directory")
		}
		return FactoryResult{Driver: DriverLocal, Storage: NewLocal(cfg.OutputDir)}, nil

	case DriverS3:
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			return FactoryResult{}, fmt.Errorf("S3 config missing: S3_REGION and S3_BUCKET required")
		}
		s, err := NewS3(ctx, S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Endpoint:     cfg.S3Endpoint,
			CacheControl: cfg.CacheControl,
		})
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: DriverS3, Storage: s}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown STORAGE_DRIVER: %s", driver)
	}
}
