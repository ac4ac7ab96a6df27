package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize is a shorthand for NewNormalizer().Run without the stats.
func Normalize(data []byte) ([]Product, error) {
	products, _, err := NewNormalizer().Run(data)
	return products, err
}

func (n *Normalizer) Run(data []byte) ([]Product, NormalizeStats, error) {
	var stats NormalizeStats

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, stats, &ParseError{Err: errors.New("empty document")}
	}

	var doc rawDocument
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, stats, &ParseError{Err: err}
	}

	if doc.Channel == nil {
		return nil, stats, &ParseError{Err: errors.New("document has no channel element")}
	}

	// encoding/xml collects one or many <item> elements into the same slice,
	// so a single-product feed needs no special casing here.
	rawItems := doc.Channel.Items.Item
	stats.Total = len(rawItems)

	products := make([]Product, 0, len(rawItems))
	for _, item := range rawItems {
		product := n.normalizeItem(item)
		if product.ID == "" || product.Title == "" || product.Link == "" {
			stats.Dropped++
			continue
		}
		products = append(products, product)
	}

	return products, stats, nil
}

func (n *Normalizer) normalizeItem(item rawItem) Product {
	return Product{
		ID:    cleanText(item.ID),
		Title: cleanText(item.Title),
		Link:  cleanText(item.Link),
		Image: cleanText(item.ImageLink),
		Price: ParsePrice(cleanText(item.Price)),
	}
}

// cleanText trims a text node and strips CDATA markers that survived a
// double-escaped vendor export (e.g. "&lt;![CDATA[Shoe]]&gt;").
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	for {
		start := strings.Index(s, "<![CDATA[")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "]]>")
		if end < 0 {
			s = s[:start] + s[start+len("<![CDATA["):]
			break
		}
		end += start
		s = s[:start] + s[start+len("<![CDATA["):end] + s[end+len("]]>"):]
	}
	return strings.TrimSpace(s)
}

// ParsePrice reads a localized decimal such as "12,50", "€ 1.299,00" or
// "1,299.00 EUR". The right-most separator is the decimal point. Anything
// unreadable yields NaN.
func ParsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return math.NaN()
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return price
}
