package feed

import (
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLanguage   = "nl-NL"
	DefaultCurrency   = "EUR"
	DefaultPerRow     = 3
	DefaultTimeoutSec = 30

	// upper bounds for configured widths and row groups
	MaxPerRow    = 12
	MaxGroupRows = 50
)

// SiteConfig holds channel-level fallbacks shared by every feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Currency    string `yaml:"currency"`
}

type FeedConfig struct {
	Slug          string // mapping key unless overridden in the file
	Title         string
	Source        string
	DefaultPerRow int
	RowVariants   []int
	RowGroups     map[int]int // width -> visual rows combined into one item
	Enabled       bool
	Timeout       time.Duration
}

// DisplayTitle falls back to the site title for feeds without their own.
func (fc *FeedConfig) DisplayTitle(site SiteConfig) string {
	if fc.Title != "" {
		return fc.Title
	}
	return site.Title
}

type Config struct {
	Site  SiteConfig
	Feeds []*FeedConfig // configuration order
}

type rawConfig struct {
	Site  SiteConfig `yaml:"site"`
	Feeds yaml.Node  `yaml:"feeds"`
}

type rawFeed struct {
	Slug          string      `yaml:"slug"`
	Title         string      `yaml:"title"`
	Source        string      `yaml:"source"`
	DefaultPerRow *int        `yaml:"default_per_row"`
	RowVariants   []int       `yaml:"row_variants"`
	RowGroups     map[int]int `yaml:"row_groups"`
	Enabled       *bool       `yaml:"enabled"`
	Timeout       int         `yaml:"timeout"` // seconds
}
