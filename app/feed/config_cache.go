package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"sync"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	// a slug ending in -r<width> would collide with variant file names
	variantSuffixPattern = regexp.MustCompile(`-r[0-9]+$`)
)

type ConfigCache struct {
	configFile string
	site       SiteConfig
	feeds      []*FeedConfig
	mu         sync.RWMutex
}

func NewConfigCache(configFile string) *ConfigCache {
	return &ConfigCache{
		configFile: configFile,
	}
}

// Run (re)loads the configuration file. On error the previously loaded
// configuration stays in place.
func (cc *ConfigCache) Run() error {
	config, err := LoadConfig(cc.configFile)
	if err != nil {
		return err
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.site = config.Site
	cc.feeds = config.Feeds

	for _, feedConfig := range config.Feeds {
		slog.Debug("Configuration loaded", "feed", feedConfig.Slug, "enabled", feedConfig.Enabled, "variants", feedConfig.RowVariants)
	}

	return nil
}

func (cc *ConfigCache) GetSite() SiteConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.site
}

func (cc *ConfigCache) GetFeed(slug string) (*FeedConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	for _, feedConfig := range cc.feeds {
		if feedConfig.Slug == slug {
			return feedConfig, nil
		}
	}
	return nil, fmt.Errorf("feed config with slug '%s' not found", slug)
}

// GetFeeds returns the feeds in configuration order. The slice is a copy.
func (cc *ConfigCache) GetFeeds() []*FeedConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	feedsCopy := make([]*FeedConfig, len(cc.feeds))
	copy(feedsCopy, cc.feeds)
	return feedsCopy
}

func (cc *ConfigCache) GetFeedCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.feeds)
}

func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file: %w", ErrConfig, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	return config, nil
}

func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrConfig, err)
	}

	config := &Config{Site: raw.Site}
	setSiteDefaults(&config.Site)
	if err := validateSite(config.Site); err != nil {
		return nil, err
	}

	feeds, err := parseFeeds(&raw.Feeds)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(feeds))
	for _, feedConfig := range feeds {
		if seen[feedConfig.Slug] {
			return nil, fmt.Errorf("%w: duplicate feed slug '%s'", ErrConfig, feedConfig.Slug)
		}
		seen[feedConfig.Slug] = true
	}
	config.Feeds = feeds

	return config, nil
}

// parseFeeds accepts either a mapping keyed by feed identity or a list of
// feeds carrying their own slug. Both keep the order of the file.
func parseFeeds(node *yaml.Node) ([]*FeedConfig, error) {
	var feeds []*FeedConfig

	switch node.Kind {
	case 0:
		return feeds, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			var raw rawFeed
			if err := node.Content[i+1].Decode(&raw); err != nil {
				return nil, fmt.Errorf("%w: feed '%s': %w", ErrConfig, key, err)
			}
			if raw.Slug == "" {
				raw.Slug = key
			}
			feedConfig, err := buildFeedConfig(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: feed '%s': %w", ErrConfig, key, err)
			}
			feeds = append(feeds, feedConfig)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			var raw rawFeed
			if err := item.Decode(&raw); err != nil {
				return nil, fmt.Errorf("%w: feed at index %d: %w", ErrConfig, i, err)
			}
			feedConfig, err := buildFeedConfig(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: feed at index %d: %w", ErrConfig, i, err)
			}
			feeds = append(feeds, feedConfig)
		}
	default:
		return nil, fmt.Errorf("%w: feeds must be a mapping or a list", ErrConfig)
	}

	return feeds, nil
}

func buildFeedConfig(raw rawFeed) (*FeedConfig, error) {
	feedConfig := &FeedConfig{
		Slug:          raw.Slug,
		Title:         raw.Title,
		Source:        raw.Source,
		DefaultPerRow: DefaultPerRow,
		RowVariants:   raw.RowVariants,
		RowGroups:     raw.RowGroups,
		Enabled:       true,
		Timeout:       DefaultTimeoutSec * time.Second,
	}

	if raw.DefaultPerRow != nil {
		feedConfig.DefaultPerRow = *raw.DefaultPerRow
	}
	if raw.Enabled != nil {
		feedConfig.Enabled = *raw.Enabled
	}
	if raw.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative")
	}
	if raw.Timeout > 0 {
		feedConfig.Timeout = time.Duration(raw.Timeout) * time.Second
	}

	if err := validateFeed(feedConfig); err != nil {
		return nil, err
	}
	return feedConfig, nil
}

func setSiteDefaults(site *SiteConfig) {
	if site.Language == "" {
		site.Language = DefaultLanguage
	}
	if site.Currency == "" {
		site.Currency = DefaultCurrency
	}
}

func validateSite(site SiteConfig) error {
	// RSS 2.0 channels require a link
	if u, err := url.Parse(site.Link); site.Link == "" || err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: site link '%s' must be an absolute URL", ErrConfig, site.Link)
	}
	if _, err := language.Parse(site.Language); err != nil {
		return fmt.Errorf("%w: site language '%s': %w", ErrConfig, site.Language, err)
	}
	if _, err := currency.ParseISO(site.Currency); err != nil {
		return fmt.Errorf("%w: site currency '%s': %w", ErrConfig, site.Currency, err)
	}
	return nil
}

func validateFeed(feedConfig *FeedConfig) error {
	if feedConfig.Source == "" {
		return fmt.Errorf("source is required")
	}
	if !slugPattern.MatchString(feedConfig.Slug) {
		return fmt.Errorf("slug '%s' must be lowercase letters, digits, '-' or '_'", feedConfig.Slug)
	}
	if variantSuffixPattern.MatchString(feedConfig.Slug) {
		return fmt.Errorf("slug '%s' must not end in a row variant suffix", feedConfig.Slug)
	}
	if feedConfig.DefaultPerRow < 1 || feedConfig.DefaultPerRow > MaxPerRow {
		return fmt.Errorf("default_per_row must be between 1 and %d, got %d", MaxPerRow, feedConfig.DefaultPerRow)
	}
	for _, width := range feedConfig.RowVariants {
		if width > MaxPerRow {
			return fmt.Errorf("row_variants must not exceed %d, got %d", MaxPerRow, width)
		}
	}
	for width, rows := range feedConfig.RowGroups {
		if width < 2 || width > MaxPerRow {
			return fmt.Errorf("row_groups width must be between 2 and %d, got %d", MaxPerRow, width)
		}
		if rows < 1 || rows > MaxGroupRows {
			return fmt.Errorf("row_groups for width %d must combine 1 to %d rows, got %d", width, MaxGroupRows, rows)
		}
	}
	return nil
}
