package catalog

import (
	"encoding/json"
	"math"
)

type Product struct {
	ID    string
	Title string
	Link  string
	Image string
	Price float64 // NaN when the vendor price could not be parsed
}

// HasPrice reports whether the price can be formatted as an amount.
func (p Product) HasPrice() bool {
	return !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}

type productJSON struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Link  string   `json:"link"`
	Image string   `json:"image"`
	Price *float64 `json:"price"`
}

// MarshalJSON writes a null price for NaN, which encoding/json refuses to encode.
func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		ID:    p.ID,
		Title: p.Title,
		Link:  p.Link,
		Image: p.Image,
	}
	if p.HasPrice() {
		price := p.Price
		out.Price = &price
	}
	return json.Marshal(out)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var in productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*p = Product{
		ID:    in.ID,
		Title: in.Title,
		Link:  in.Link,
		Image: in.Image,
		Price: math.NaN(),
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	return nil
}

type NormalizeStats struct {
	Total   int
	Dropped int
}

// raw document shape: <rss|catalog><channel><items><item>...</item></items></channel>
type rawDocument struct {
	Channel *rawChannel `xml:"channel"`
}

type rawChannel struct {
	Items rawItems `xml:"items"`
}

type rawItems struct {
	Item []rawItem `xml:"item"`
}

type rawItem struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	ImageLink string `xml:"image_link"`
	Price     string `xml:"price"`
}
