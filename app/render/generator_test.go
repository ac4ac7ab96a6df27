package render

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/layout"
)

func testSite() feed.SiteConfig {
	return feed.SiteConfig{
		Title:       "Shop",
		Link:        "https://shop.example.com",
		Description: "Weekly picks",
		Language:    "en-GB",
		Currency:    "EUR",
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func sampleRows() []layout.Row {
	return []layout.Row{
		{
			{ID: "1", Title: "One", Link: "https://shop.example.com/1", Image: "https://cdn.example.com/1.jpg", Price: 10},
			{ID: "2", Title: "Two", Link: "https://shop.example.com/2", Image: "https://cdn.example.com/2.jpg", Price: 20},
			{ID: "3", Title: "Three", Link: "https://shop.example.com/3", Image: "https://cdn.example.com/3.jpg", Price: 30},
		},
		{
			{ID: "4", Title: "Four", Link: "https://shop.example.com/4", Price: 40},
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator("1.2.3")
	generator.Now = fixedClock(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))

	rss, err := generator.Run(testSite(), "Summer Sale", sampleRows(), 3)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.HasPrefix(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should start with the XML declaration")
	}
	if !strings.Contains(rss, `<rss version="2.0">`) {
		t.Error("RSS should declare version 2.0")
	}
	if !strings.Contains(rss, "<lastBuildDate>Fri, 01 Mar 2024 09:30:00 +0000</lastBuildDate>") {
		t.Error("RSS should contain lastBuildDate in RFC 1123 format")
	}
	if !strings.Contains(rss, "<generator>grid-feeds/1.2.3</generator>") {
		t.Error("RSS should name its generator")
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS does not parse: %v", err)
	}

	if parsed.Title != "Summer Sale" {
		t.Errorf("Expected channel title 'Summer Sale', got '%s'", parsed.Title)
	}
	if parsed.Link != "https://shop.example.com" {
		t.Errorf("Expected channel link 'https://shop.example.com', got '%s'", parsed.Link)
	}
	if parsed.Description != "Weekly picks" {
		t.Errorf("Expected channel description 'Weekly picks', got '%s'", parsed.Description)
	}
	if parsed.Language != "en-GB" {
		t.Errorf("Expected language 'en-GB', got '%s'", parsed.Language)
	}

	if len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "Summer Sale – 3 per row – set 1" {
		t.Errorf("Unexpected first item title '%s'", first.Title)
	}
	if first.Link != "https://shop.example.com/1" {
		t.Errorf("Expected first item link to be the first product, got '%s'", first.Link)
	}
	if first.GUID != "Summer Sale-3-per-row-set-1-1" {
		t.Errorf("Unexpected first item guid '%s'", first.GUID)
	}
	if len(first.Enclosures) != 1 || first.Enclosures[0].URL != "https://cdn.example.com/1.jpg" {
		t.Errorf("Expected enclosure for the first product image, got %+v", first.Enclosures)
	} else if first.Enclosures[0].Type != "image/jpeg" {
		t.Errorf("Expected enclosure type image/jpeg, got '%s'", first.Enclosures[0].Type)
	}
	if !strings.Contains(first.Description, "€10.00") || !strings.Contains(first.Description, "<table") {
		t.Errorf("Expected item description to carry the product row markup, got: %s", first.Description)
	}

	second := parsed.Items[1]
	if second.Title != "Summer Sale – 3 per row – set 2" {
		t.Errorf("Unexpected second item title '%s'", second.Title)
	}
	if len(second.Enclosures) != 0 {
		t.Errorf("Expected no enclosure when the first product has no image, got %d", len(second.Enclosures))
	}
	if first.Published != second.Published {
		t.Errorf("Expected items to share pubDate, got '%s' and '%s'", first.Published, second.Published)
	}
}

func TestGenerateRSSSingleItemTitle(t *testing.T) {
	generator := NewGenerator("dev")
	rows := []layout.Row{{{ID: "1", Title: "Only", Link: "https://e.com/1", Price: 1}}}

	rss, err := generator.Run(testSite(), "Deals", rows, 2)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Title != "Deals – 2 per row" {
		t.Errorf("Expected no set suffix for a single item, got '%s'", parsed.Items[0].Title)
	}
}

func TestGenerateRSSNoRows(t *testing.T) {
	generator := NewGenerator("dev")

	rss, err := generator.Run(testSite(), "", nil, 3)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Empty feed should still be valid RSS: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(parsed.Items))
	}
	if parsed.Title != "Shop" {
		t.Errorf("Expected channel title to fall back to site title, got '%s'", parsed.Title)
	}
}

func TestGenerateRSSDefaults(t *testing.T) {
	generator := NewGenerator("dev")
	site := feed.SiteConfig{Title: "Shop", Link: "https://shop.example.com"}

	rss, err := generator.Run(site, "Deals", nil, 3)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(rss, "<language>nl-NL</language>") {
		t.Error("Expected default language nl-NL")
	}
	if !strings.Contains(rss, "<description>Deals</description>") {
		t.Error("Expected description to fall back to the feed title")
	}
}

func TestGenerateRSSDeterministic(t *testing.T) {
	dates := regexp.MustCompile(`<(lastBuildDate|pubDate)>[^<]*</(lastBuildDate|pubDate)>`)

	first := NewGenerator("dev")
	first.Now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	second := NewGenerator("dev")
	second.Now = fixedClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))

	a, err := first.Run(testSite(), "Deals", sampleRows(), 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Run(testSite(), "Deals", sampleRows(), 3)
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Error("Expected build dates to differ between clocks")
	}
	if dates.ReplaceAllString(a, "") != dates.ReplaceAllString(b, "") {
		t.Error("Expected identical output apart from build dates")
	}
}

func TestGenerateRSSEscaping(t *testing.T) {
	generator := NewGenerator("dev")
	site := testSite()
	site.Title = `Shop <b>&</b>`
	rows := []layout.Row{{
		catalog.Product{
			ID:    `id&"1"`,
			Title: `<script>&"'</script>`,
			Link:  `https://e.com/p?a=1&b="2"`,
			Image: `https://cdn.e.com/a.jpg?x=1&y="2"`,
			Price: 5,
		},
	}}

	rss, err := generator.Run(site, `Deals & <More>`, rows, 1)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(rss, "<script>") || strings.Contains(rss, "<More>") {
		t.Errorf("Unescaped markup leaked into RSS: %s", rss)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Escaped RSS does not parse: %v", err)
	}
	if parsed.Title != "Deals & <More>" {
		t.Errorf("Expected channel title to round trip, got '%s'", parsed.Title)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(parsed.Items))
	}
	item := parsed.Items[0]
	if item.Link != rows[0][0].Link {
		t.Errorf("Expected link to round trip, got '%s'", item.Link)
	}
	if len(item.Enclosures) != 1 || item.Enclosures[0].URL != rows[0][0].Image {
		t.Errorf("Expected enclosure url to round trip, got %+v", item.Enclosures)
	}
	if strings.Contains(item.Description, "<script>") {
		t.Errorf("Product title must be escaped inside the card markup: %s", item.Description)
	}
}

func TestWriteCDATASplitsTerminator(t *testing.T) {
	generator := NewGenerator("dev")
	var buf bytes.Buffer
	generator.writeCDATA(&buf, "description", "before]]>after", 0)

	var decoded struct {
		Text string `xml:",chardata"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("CDATA output is not well-formed: %v", err)
	}
	if decoded.Text != "before]]>after" {
		t.Errorf("Expected 'before]]>after', got '%s'", decoded.Text)
	}
}

func TestItemTitle(t *testing.T) {
	tests := []struct {
		width, index, total int
		want                string
	}{
		{3, 1, 1, "Deals – 3 per row"},
		{3, 1, 2, "Deals – 3 per row – set 1"},
		{4, 7, 7, "Deals – 4 per row – set 7"},
	}

	for _, tt := range tests {
		if got := ItemTitle("Deals", tt.width, tt.index, tt.total); got != tt.want {
			t.Errorf("ItemTitle(%d, %d, %d) = %q, want %q", tt.width, tt.index, tt.total, got, tt.want)
		}
	}
}
