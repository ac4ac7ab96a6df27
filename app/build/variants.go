package build

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/lysyi3m/grid-feeds/app/feed"
)

var variantFilePattern = regexp.MustCompile(`^([a-z0-9][a-z0-9_-]*?)(?:-r([0-9]+))?\.xml$`)

// EffectiveVariants returns the widths to build for a feed: the configured
// variants in order, with the default width prepended when they omit it.
// Widths below one become one and duplicates are dropped.
func EffectiveVariants(fc *feed.FeedConfig) []int {
	defaultWidth := max(fc.DefaultPerRow, 1)

	seen := map[int]bool{}
	var variants []int
	for _, width := range fc.RowVariants {
		width = max(width, 1)
		if seen[width] {
			continue
		}
		seen[width] = true
		variants = append(variants, width)
	}

	if !seen[defaultWidth] {
		variants = append([]int{defaultWidth}, variants...)
	}
	return variants
}

// VariantFileName names the RSS document for one width. The default width
// owns the bare slug.
func VariantFileName(slug string, width, defaultPerRow int) string {
	if width == max(defaultPerRow, 1) {
		return slug + ".xml"
	}
	return fmt.Sprintf("%s-r%d.xml", slug, width)
}

// ParseVariantFileName inverts VariantFileName. The returned width is zero for
// the default variant.
func ParseVariantFileName(name string) (slug string, width int, ok bool) {
	m := variantFilePattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	if m[2] == "" {
		return m[1], 0, true
	}

	width, err := strconv.Atoi(m[2])
	if err != nil || width < 1 {
		return "", 0, false
	}
	return m[1], width, true
}

func ExportFileName(slug string) string {
	return slug + ".json"
}
