package api

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/grid-feeds/app/layout"
	"github.com/lysyi3m/grid-feeds/app/render"
)

type previewPage struct {
	Slug        string
	Title       string
	GeneratedAt time.Time
	Count       int
	Width       int
	Widths      []int
	FeedFile    string
	Rows        []layout.Row
	Cards       *render.CardRenderer
}

// renderPreview lays out every item of one variant the way an email
// platform would show them, one section per RSS item.
func renderPreview(p previewPage) string {
	var b strings.Builder
	title := html.EscapeString(p.Title)

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s – %d per row</title>\n", title, p.Width)
	b.WriteString("</head>\n<body style=\"margin:0;padding:24px;background:#f4f4f4;font-family:Arial,Helvetica,sans-serif;\">\n")

	fmt.Fprintf(&b, "<h1 style=\"font-size:22px;\">%s</h1>\n", title)
	fmt.Fprintf(&b, "<p style=\"color:#555555;\">%d products · generated %s · <a href=\"/feeds/%s\">RSS</a></p>\n",
		p.Count, p.GeneratedAt.Format(time.RFC1123Z), html.EscapeString(p.FeedFile))

	b.WriteString("<nav style=\"margin-bottom:24px;\">")
	for i, width := range p.Widths {
		if i > 0 {
			b.WriteString(" | ")
		}
		if width == p.Width {
			fmt.Fprintf(&b, "<strong>%d per row</strong>", width)
			continue
		}
		fmt.Fprintf(&b, "<a href=\"/preview/%s?per_row=%d\">%d per row</a>", html.EscapeString(p.Slug), width, width)
	}
	b.WriteString("</nav>\n")

	if len(p.Rows) == 0 {
		b.WriteString("<p>No products.</p>\n")
	}

	for i, row := range p.Rows {
		b.WriteString("<section style=\"background:#ffffff;margin:0 auto 24px auto;padding:16px;max-width:640px;\">\n")
		fmt.Fprintf(&b, "<h2 style=\"font-size:16px;\">%s</h2>\n",
			html.EscapeString(render.ItemTitle(p.Title, p.Width, i+1, len(p.Rows))))
		b.WriteString(p.Cards.Row(row, p.Width))
		b.WriteString("\n</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
