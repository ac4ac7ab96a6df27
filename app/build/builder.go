// Package build turns one feed's normalized products into the set of
// artifacts published for it: a JSON export plus one RSS document per row
// width.
package build

import (
	"fmt"
	"time"

	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/layout"
	"github.com/lysyi3m/grid-feeds/app/render"
)

type Variant struct {
	Width    int
	FileName string
	Rows     int
	Document string
}

type Build struct {
	Slug           string
	ExportFileName string
	Export         []byte
	Products       int
	Variants       []Variant // EffectiveVariants order
}

// VariantsByWidth is a lookup view over Variants.
func (b *Build) VariantsByWidth() map[int]Variant {
	byWidth := make(map[int]Variant, len(b.Variants))
	for _, v := range b.Variants {
		byWidth[v.Width] = v
	}
	return byWidth
}

type Builder struct {
	generator *render.Generator
}

func NewBuilder(version string) *Builder {
	return &Builder{generator: render.NewGenerator(version)}
}

// SetClock overrides the time source used for build dates and the export
// timestamp.
func (b *Builder) SetClock(now func() time.Time) {
	b.generator.Now = now
}

func (b *Builder) Build(fc *feed.FeedConfig, site feed.SiteConfig, products []catalog.Product) (*Build, error) {
	chunker, err := layout.NewChunkerWithGroups(fc.RowGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to configure rows for %s: %w", fc.Slug, err)
	}

	title := fc.DisplayTitle(site)

	export, err := render.RenderJSON(render.NewExport(title, fc.Source, b.generator.Now(), products))
	if err != nil {
		return nil, fmt.Errorf("failed to render export for %s: %w", fc.Slug, err)
	}

	result := &Build{
		Slug:           fc.Slug,
		ExportFileName: ExportFileName(fc.Slug),
		Export:         export,
		Products:       len(products),
	}

	for _, width := range EffectiveVariants(fc) {
		rows := chunker.Chunk(products, width)

		document, err := b.generator.Run(site, title, rows, width)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s at %d per row: %w", fc.Slug, width, err)
		}

		result.Variants = append(result.Variants, Variant{
			Width:    width,
			FileName: VariantFileName(fc.Slug, width, fc.DefaultPerRow),
			Rows:     len(rows),
			Document: document,
		})
	}

	return result, nil
}
