package render

import (
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/layout"
)

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	if strings.HasPrefix(fragment, "<td") {
		fragment = "<table><tr>" + fragment + "</tr></table>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("Failed to parse fragment: %v", err)
	}
	return doc
}

func TestRenderCard(t *testing.T) {
	renderer := NewCardRenderer(DefaultTheme())
	product := catalog.Product{
		ID:    "SKU-1",
		Title: "Rain Jacket",
		Link:  "https://shop.example.com/p/1",
		Image: "https://cdn.example.com/1.jpg",
		Price: 49.95,
	}

	card := renderer.Run(product, 3)
	doc := parseFragment(t, card)

	if src, _ := doc.Find("img").Attr("src"); src != product.Image {
		t.Errorf("Expected image src '%s', got '%s'", product.Image, src)
	}
	if alt, _ := doc.Find("img").Attr("alt"); alt != product.Title {
		t.Errorf("Expected alt '%s', got '%s'", product.Title, alt)
	}
	if href, _ := doc.Find("a").Attr("href"); href != product.Link {
		t.Errorf("Expected link '%s', got '%s'", product.Link, href)
	}
	if title := doc.Find("a span").Text(); title != product.Title {
		t.Errorf("Expected title '%s', got '%s'", product.Title, title)
	}
	if !strings.Contains(doc.Text(), "€49.95") {
		t.Errorf("Expected formatted price '€49.95' in card, got: %s", doc.Text())
	}

	if strings.Contains(card, "<style") || strings.Contains(card, "class=") || strings.Contains(card, "<link") {
		t.Error("Card must rely on inline styles only")
	}
	if !strings.Contains(card, `style="`) {
		t.Error("Card should carry inline styles")
	}
}

func TestRenderCardWithoutImage(t *testing.T) {
	renderer := NewCardRenderer(DefaultTheme())
	card := renderer.Run(catalog.Product{ID: "1", Title: "Plain", Link: "https://e.com/1", Price: 1}, 2)
	doc := parseFragment(t, card)

	img := doc.Find("img")
	if img.Length() != 1 {
		t.Fatalf("Expected the image slot to be kept, found %d img elements", img.Length())
	}
	if src, ok := img.Attr("src"); !ok || src != "" {
		t.Errorf("Expected empty src attribute, got %q (present: %v)", src, ok)
	}
}

func TestRenderCardEscaping(t *testing.T) {
	renderer := NewCardRenderer(DefaultTheme())
	product := catalog.Product{
		ID:    "x",
		Title: `<script>&"'</script>`,
		Link:  `https://e.com/p?q="quoted"&x=1`,
		Image: `https://cdn.e.com/a"b.jpg`,
		Price: 2,
	}

	card := renderer.Run(product, 3)

	if strings.Contains(card, "<script>") || strings.Contains(card, "</script>") {
		t.Errorf("Title markup leaked into the card: %s", card)
	}
	if strings.Contains(card, `"quoted"`) || strings.Contains(card, `a"b`) {
		t.Errorf("Quotes in URLs must be attribute-escaped: %s", card)
	}

	doc := parseFragment(t, card)
	if title := doc.Find("a span").Text(); title != product.Title {
		t.Errorf("Expected escaped title to decode to '%s', got '%s'", product.Title, title)
	}
	if href, _ := doc.Find("a").Attr("href"); href != product.Link {
		t.Errorf("Expected link to decode to '%s', got '%s'", product.Link, href)
	}
	if src, _ := doc.Find("img").Attr("src"); src != product.Image {
		t.Errorf("Expected image to decode to '%s', got '%s'", product.Image, src)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		currency string
		language string
		price    float64
		want     string
	}{
		{"EUR", "", 49.95, "€49.95"},
		{"EUR", "nl-NL", 10, "€10.00"},
		{"EUR", "nl-NL", 2.675, "€2.68"},
		{"EUR", "nl-NL", 0.005, "€0.01"},
		{"USD", "nl-NL", 1299, "US$1299.00"},
		{"USD", "en-US", 1299, "$1299.00"},
		{"GBP", "en-GB", 5.5, "£5.50"},
		{"JPY", "en-US", 1500, "¥1500.00"},
		{"JPY", "nl-NL", 1500, "JP¥1500.00"},
		{"CAD", "en-GB", 20, "CA$20.00"},
		{"SEK", "nl-NL", 99.9, "kr 99.90"},
		{"SEK", "sv-SE", 99.9, "kr 99.90"},
		{"PLN", "pl-PL", 12, "zł 12.00"},
		{"PLN", "nl-NL", 12, "zł 12.00"},
		{"CHF", "de-CH", 7.2, "CHF 7.20"},
		{"EUR", "nl-NL", math.NaN(), "-.--"},
		{"EUR", "nl-NL", math.Inf(1), "-.--"},
		{"EUR", "nl-NL", math.Inf(-1), "-.--"},
	}

	for _, tt := range tests {
		renderer := NewCardRenderer(Theme{Currency: tt.currency, Language: tt.language})
		got := renderer.FormatPrice(catalog.Product{Price: tt.price})
		if got != tt.want {
			t.Errorf("FormatPrice(%s, %s, %v) = %q, want %q", tt.currency, tt.language, tt.price, got, tt.want)
		}
	}
}

func TestRenderRow(t *testing.T) {
	renderer := NewCardRenderer(DefaultTheme())
	row := layout.Row{
		{ID: "1", Title: "One", Link: "https://e.com/1", Image: "https://e.com/1.jpg", Price: 1},
		{ID: "2", Title: "Two", Link: "https://e.com/2", Image: "https://e.com/2.jpg", Price: 2},
		{ID: "3", Title: "Three", Link: "https://e.com/3", Image: "https://e.com/3.jpg", Price: 3},
		{ID: "4", Title: "Four", Link: "https://e.com/4", Image: "https://e.com/4.jpg", Price: 4},
	}

	doc := parseFragment(t, renderer.Row(row, 3))

	rows := doc.Find("tr")
	if rows.Length() != 2 {
		t.Fatalf("Expected 2 visual rows, got %d", rows.Length())
	}
	if cells := rows.Eq(0).Find("td").Length(); cells != 3 {
		t.Errorf("Expected 3 cells in first row, got %d", cells)
	}
	if cells := rows.Eq(1).Find("td").Length(); cells != 3 {
		t.Errorf("Expected last row padded to 3 cells, got %d", cells)
	}
	if images := doc.Find("img").Length(); images != 4 {
		t.Errorf("Expected 4 product images, got %d", images)
	}

	var titles []string
	doc.Find("a span").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	if strings.Join(titles, ",") != "One,Two,Three,Four" {
		t.Errorf("Expected products in order, got %v", titles)
	}
}

func TestRenderRowSingleColumn(t *testing.T) {
	renderer := NewCardRenderer(DefaultTheme())
	row := layout.Row{{ID: "1", Title: "Solo", Link: "https://e.com/1", Price: 1}}

	fragment := renderer.Row(row, 1)
	doc := parseFragment(t, fragment)

	if cells := doc.Find("td").Length(); cells != 1 {
		t.Errorf("Expected a single cell, got %d", cells)
	}
	if !strings.Contains(fragment, `width:100.00%`) {
		t.Error("Expected a full-width cell for one product per row")
	}
}
