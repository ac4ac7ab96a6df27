// Package render turns normalized products into the artifacts the build
// writes: HTML product cards, RSS 2.0 documents and the JSON export.
//
// Card markup targets email clients: table layout and inline styles only.
// Email platforms may strip <style> blocks, so nothing depends on one.
package render

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lysyi3m/grid-feeds/app/catalog"
	"github.com/lysyi3m/grid-feeds/app/layout"
)

const (
	PricePlaceholder    = "-.--"
	DefaultContentWidth = 600
	cellPadding         = 8
	fontStack           = "Arial,Helvetica,sans-serif"
)

type Theme struct {
	Currency     string // ISO 4217 code
	Language     string // BCP 47 tag, picks the currency symbol
	ContentWidth int    // px available to one row
	TextColor    string
	PriceColor   string
}

func DefaultTheme() Theme {
	return Theme{
		Currency:     "EUR",
		Language:     "nl-NL",
		ContentWidth: DefaultContentWidth,
		TextColor:    "#222222",
		PriceColor:   "#555555",
	}
}

type CardRenderer struct {
	theme  Theme
	symbol string
}

func NewCardRenderer(theme Theme) *CardRenderer {
	defaults := DefaultTheme()
	if theme.Currency == "" {
		theme.Currency = defaults.Currency
	}
	if theme.Language == "" {
		theme.Language = defaults.Language
	}
	if theme.ContentWidth <= 0 {
		theme.ContentWidth = defaults.ContentWidth
	}
	if theme.TextColor == "" {
		theme.TextColor = defaults.TextColor
	}
	if theme.PriceColor == "" {
		theme.PriceColor = defaults.PriceColor
	}

	return &CardRenderer{
		theme:  theme,
		symbol: currencySymbol(theme.Currency, theme.Language),
	}
}

// Run renders one product as a table cell sized for a row of width cards.
func (r *CardRenderer) Run(product catalog.Product, width int) string {
	width = max(width, 1)
	var b strings.Builder

	title := html.EscapeString(product.Title)
	link := html.EscapeString(product.Link)
	image := html.EscapeString(product.Image)

	b.WriteString(r.openCell(width))
	fmt.Fprintf(&b, `<a href="%s" target="_blank" style="text-decoration:none;color:%s;">`, link, r.theme.TextColor)
	// the image slot is always written so cards in a row line up
	fmt.Fprintf(&b, `<img src="%s" alt="%s" width="%d" style="display:block;width:100%%;max-width:%dpx;height:auto;border:0;margin:0 auto 8px auto;">`,
		image, title, r.imageWidth(width), r.imageWidth(width))
	fmt.Fprintf(&b, `<span style="display:block;font-family:%s;font-size:14px;line-height:18px;font-weight:bold;color:%s;">%s</span>`,
		fontStack, r.theme.TextColor, title)
	b.WriteString(`</a>`)
	fmt.Fprintf(&b, `<span style="display:block;font-family:%s;font-size:14px;line-height:18px;color:%s;margin-top:4px;">%s</span>`,
		fontStack, r.theme.PriceColor, html.EscapeString(r.FormatPrice(product)))
	b.WriteString(`</td>`)

	return b.String()
}

// Row renders a row as a presentation table holding one <tr> per visual row
// of width cards. A short last line is padded with empty cells.
func (r *CardRenderer) Row(row layout.Row, width int) string {
	width = max(width, 1)
	var b strings.Builder

	b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="width:100%;max-width:`)
	fmt.Fprintf(&b, `%dpx;border-collapse:collapse;margin:0 auto;">`, r.theme.ContentWidth)

	for start := 0; start < len(row); start += width {
		end := min(start+width, len(row))
		b.WriteString(`<tr>`)
		for _, product := range row[start:end] {
			b.WriteString(r.Run(product, width))
		}
		for i := end - start; i < width; i++ {
			b.WriteString(r.openCell(width))
			b.WriteString(`&nbsp;</td>`)
		}
		b.WriteString(`</tr>`)
	}

	b.WriteString(`</table>`)
	return b.String()
}

func (r *CardRenderer) FormatPrice(product catalog.Product) string {
	if !product.HasPrice() {
		return PricePlaceholder
	}
	return r.symbol + decimal.NewFromFloat(product.Price).StringFixed(2)
}

func (r *CardRenderer) openCell(width int) string {
	percent := decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(width))).StringFixed(2)
	return fmt.Sprintf(`<td width="%d" valign="top" align="center" style="width:%s%%;padding:%dpx;vertical-align:top;text-align:center;">`,
		r.theme.ContentWidth/width, percent, cellPadding)
}

func (r *CardRenderer) imageWidth(width int) int {
	return max(r.theme.ContentWidth/width-2*cellPadding, 1)
}

// currencySymbol looks the symbol up in CLDR for the site language. A
// language without its own symbol falls back to the narrow form, then to the
// ISO code. Letter symbols get a separating space.
func currencySymbol(code, lang string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " "
	}

	printer := message.NewPrinter(language.Make(lang))
	symbol := printer.Sprint(currency.Symbol(unit))
	if symbol == unit.String() {
		symbol = printer.Sprint(currency.NarrowSymbol(unit))
	}

	if r, _ := utf8.DecodeLastRuneInString(symbol); unicode.IsLetter(r) {
		return symbol + " "
	}
	return symbol
}
