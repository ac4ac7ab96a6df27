package render

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/grid-feeds/app/feed"
	"github.com/lysyi3m/grid-feeds/app/layout"
)

// Generator writes one RSS 2.0 document per variant. Every item of a
// document shares the generation time, so a re-run always reads as fresh.
type Generator struct {
	Version string
	Now     func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{
		Version: version,
		Now:     time.Now,
	}
}

func (g *Generator) Run(site feed.SiteConfig, feedTitle string, rows []layout.Row, width int) (string, error) {
	width = max(width, 1)
	feedTitle = cmp.Or(feedTitle, site.Title)
	generatedAt := g.Now()
	buildDate := generatedAt.Format(time.RFC1123Z)
	cards := NewCardRenderer(Theme{Currency: site.Currency, Language: site.Language})

	var buf bytes.Buffer

	buf.WriteString(xml.Header)
	buf.WriteString(`<rss version="2.0">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feedTitle, 4)
	g.writeElement(&buf, "link", site.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(site.Description, feedTitle), 4)
	g.writeElement(&buf, "language", cmp.Or(site.Language, feed.DefaultLanguage), 4)
	g.writeElement(&buf, "lastBuildDate", buildDate, 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("grid-feeds/%s", cmp.Or(g.Version, "dev")), 4)

	for i, row := range rows {
		g.writeItem(&buf, itemContext{
			site:        site,
			feedTitle:   feedTitle,
			width:       width,
			index:       i + 1,
			total:       len(rows),
			pubDate:     buildDate,
			generatedAt: generatedAt,
		}, row, cards)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

type itemContext struct {
	site        feed.SiteConfig
	feedTitle   string
	width       int
	index       int
	total       int
	pubDate     string
	generatedAt time.Time
}

func (g *Generator) writeItem(buf *bytes.Buffer, ic itemContext, row layout.Row, cards *CardRenderer) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", ItemTitle(ic.feedTitle, ic.width, ic.index, ic.total), 6)

	link := ic.site.Link
	guid := fmt.Sprintf("%s-%d-per-row-set-%d-%d", ic.feedTitle, ic.width, ic.index, ic.generatedAt.UnixNano())
	if len(row) > 0 {
		link = row[0].Link
		guid = fmt.Sprintf("%s-%d-per-row-set-%d-%s", ic.feedTitle, ic.width, ic.index, row[0].ID)
	}
	g.writeElement(buf, "link", link, 6)

	buf.WriteString(`      <guid isPermaLink="false">`)
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", ic.pubDate, 6)
	g.writeCDATA(buf, "description", cards.Row(row, ic.width), 6)

	if len(row) > 0 && row[0].Image != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(row[0].Image)))
	}

	buf.WriteString("    </item>\n")
}

// ItemTitle names a row item, e.g. "Summer Sale – 3 per row – set 2".
func ItemTitle(feedTitle string, width, index, total int) string {
	title := fmt.Sprintf("%s – %d per row", feedTitle, width)
	if total > 1 {
		title += fmt.Sprintf(" – set %d", index)
	}
	return title
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// writeCDATA keeps markup raw for the consuming platform. A "]]>" inside the
// content is split across two sections.
func (g *Generator) writeCDATA(buf *bytes.Buffer, tag, content string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString("><![CDATA[")
	buf.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]></")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
