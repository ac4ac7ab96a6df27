package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/grid-feeds/app/build"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/layout"
	"github.com/lysyi3m/grid-feeds/app/render"
	"github.com/lysyi3m/grid-feeds/app/storage"
)

// NewHandler wires the preview endpoints. rebuilder and gatherer may be nil.
func NewHandler(configCache *feed.ConfigCache, store storage.Storage, rebuilder RebuilderInterface, gatherer prometheus.Gatherer, version string) *Handler {
	return &Handler{
		configCache: configCache,
		store:       store,
		rebuilder:   rebuilder,
		gatherer:    gatherer,
		version:     version,
	}
}

// GetArtifact serves a generated RSS variant or JSON export by file name.
// Names the build never produces are 404 without touching storage.
func (h *Handler) GetArtifact(c *gin.Context) {
	file := c.Param("file")
	slug, ok := artifactSlug(file)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	data, err := h.store.Get(c.Request.Context(), file)
	if errors.Is(err, storage.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Storage error", "operation", "get_artifact", "file", file, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Slug", slug)
	c.Data(http.StatusOK, storage.ContentType(file), data)
}

// GetPreview renders the grid of one built feed as an HTML page. The width
// comes from per_row and must be one of the feed's variants.
func (h *Handler) GetPreview(c *gin.Context) {
	slug := c.Param("slug")

	feedConfig, err := h.configCache.GetFeed(slug)
	if err != nil {
		c.String(http.StatusNotFound, "Feed not found")
		return
	}

	width := feedConfig.DefaultPerRow
	if perRow := c.Query("per_row"); perRow != "" {
		width, err = strconv.Atoi(perRow)
		if err != nil || width < 1 {
			c.String(http.StatusBadRequest, "per_row must be a positive integer")
			return
		}
	}

	widths := build.EffectiveVariants(feedConfig)
	if !slices.Contains(widths, width) {
		c.String(http.StatusNotFound, "Feed has no %d per row variant", width)
		return
	}

	export, err := h.loadExport(c.Request.Context(), slug)
	if errors.Is(err, storage.ErrNotFound) {
		c.String(http.StatusNotFound, "Feed has not been built yet")
		return
	}
	if err != nil {
		slog.Error("Failed to load export", "feed", slug, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	chunker, err := layout.NewChunkerWithGroups(feedConfig.RowGroups)
	if err != nil {
		slog.Error("Invalid row groups", "feed", slug, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	site := h.configCache.GetSite()
	page := renderPreview(previewPage{
		Slug:        slug,
		Title:       export.Title,
		GeneratedAt: export.GeneratedAt,
		Count:       export.Count,
		Width:       width,
		Widths:      widths,
		FeedFile:    build.VariantFileName(slug, width, feedConfig.DefaultPerRow),
		Rows:        chunker.Chunk(export.Products, width),
		Cards:       render.NewCardRenderer(render.Theme{Currency: site.Currency, Language: site.Language}),
	})

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"version":               h.version,
		"loaded_configurations": h.configCache.GetFeedCount(),
	}

	if h.rebuilder != nil {
		if report, ok := h.rebuilder.LastReport(); ok {
			health["last_run"] = map[string]interface{}{
				"run_id":   report.RunID,
				"built":    report.Built(),
				"failed":   len(report.Failed()),
				"duration": report.Duration.String(),
			}
		}
	}

	c.JSON(http.StatusOK, health)
}

// APIListFeeds lists configured feeds with their artifact URLs
func (h *Handler) APIListFeeds(c *gin.Context) {
	site := h.configCache.GetSite()
	feedConfigs := h.configCache.GetFeeds()

	feeds := make([]feedSummary, 0, len(feedConfigs))
	for _, feedConfig := range feedConfigs {
		summary := feedSummary{
			Slug:    feedConfig.Slug,
			Title:   feedConfig.DisplayTitle(site),
			Enabled: feedConfig.Enabled,
			Export:  "/feeds/" + build.ExportFileName(feedConfig.Slug),
			Preview: "/preview/" + feedConfig.Slug,
		}
		for _, width := range build.EffectiveVariants(feedConfig) {
			summary.Variants = append(summary.Variants, "/feeds/"+build.VariantFileName(feedConfig.Slug, width, feedConfig.DefaultPerRow))
		}
		feeds = append(feeds, summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APIRebuild reloads the feeds file and runs a full build
func (h *Handler) APIRebuild(c *gin.Context) {
	// the run outlives a client that hangs up
	report, err := h.rebuilder.Rebuild(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		slog.Error("Rebuild failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to rebuild feeds",
			"details": err.Error(),
		})
		return
	}

	results := make([]feedResultSummary, 0, len(report.Results))
	for _, result := range report.Results {
		summary := feedResultSummary{
			Slug:     result.Slug,
			Skipped:  result.Skipped,
			Products: result.Products,
			Files:    result.Files,
		}
		if result.Err != nil {
			summary.Error = result.Err.Error()
		}
		results = append(results, summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":   report.RunID,
		"built":    report.Built(),
		"failed":   len(report.Failed()),
		"duration": report.Duration.String(),
		"feeds":    results,
	})
}

func (h *Handler) loadExport(ctx context.Context, slug string) (*render.Export, error) {
	data, err := h.store.Get(ctx, build.ExportFileName(slug))
	if err != nil {
		return nil, err
	}

	var export render.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// artifactSlug accepts only names the build produces.
func artifactSlug(file string) (string, bool) {
	if base, ok := strings.CutSuffix(file, ".json"); ok {
		slug, width, ok := build.ParseVariantFileName(base + ".xml")
		return slug, ok && width == 0
	}
	slug, _, ok := build.ParseVariantFileName(file)
	return slug, ok
}
