package cfg

import "github.com/lysyi3m/grid-feeds/app/storage"

type Cfg struct {
	// Build configuration
	ConfigFile  string
	OutputDir   string
	WorkerCount int
	UserAgent   string

	// Storage configuration
	StorageDriver string
	S3Region      string
	S3Bucket      string
	S3Prefix      string
	S3Endpoint    string
	CacheControl  string

	// Observability
	PushgatewayURL string

	// Preview server
	Port            string
	RebuildSchedule string
	APIAccessKey    string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) StorageConfig() storage.Config {
	return storage.Config{
		Driver:       c.StorageDriver,
		OutputDir:    c.OutputDir,
		S3Region:     c.S3Region,
		S3Bucket:     c.S3Bucket,
		S3Prefix:     c.S3Prefix,
		S3Endpoint:   c.S3Endpoint,
		CacheControl: c.CacheControl,
	}
}
