package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/grid-feeds/app/catalog"
)

// Export is the JSON document written next to the RSS variants. It always
// carries the full product list, independent of row width.
type Export struct {
	Title       string            `json:"title"`
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Count       int               `json:"count"`
	Products    []catalog.Product `json:"products"`
}

func NewExport(title, source string, generatedAt time.Time, products []catalog.Product) Export {
	if products == nil {
		products = []catalog.Product{}
	}
	return Export{
		Title:       title,
		Source:      source,
		GeneratedAt: generatedAt.UTC().Truncate(time.Second),
		Count:       len(products),
		Products:    products,
	}
}

func RenderJSON(export Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}
