// Package report renders a dataset's statistics as Markdown, HTML or an
// XLSX workbook.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/jengzang/rose-backend-go/internal/circstat"
	"github.com/jengzang/rose-backend-go/internal/dataset"
)

// Format selects the report output.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat maps a query value to a Format. Empty means Markdown.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown:
		return FormatMarkdown, true
	case FormatHTML:
		return FormatHTML, true
	case FormatXLSX:
		return FormatXLSX, true
	default:
		return "", false
	}
}

// ContentType is the MIME type of the rendered report.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Input is everything a report describes.
type Input struct {
	Name       string
	Comment    string
	Provenance dataset.Provenance
	Statistics []circstat.Statistic
	// Histogram is optional.
	Histogram *circstat.Histogram
}

// Markdown describes the dataset, its statistics and its sector tallies.
func Markdown(in Input) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", escape(in.Name)))
	if in.Comment != "" {
		b.WriteString(escape(in.Comment))
		b.WriteString("\n\n")
	}
	if p := in.Provenance; p.Table != "" {
		b.WriteString(fmt.Sprintf("Source: `%s.%s`", p.Table, p.Column))
		if p.Predicate != "" {
			b.WriteString(fmt.Sprintf(" where `%s`", p.Predicate))
		}
		b.WriteString("\n\n")
	}

	writeStatistics(&b, in.Statistics)
	if in.Histogram != nil {
		writeHistogram(&b, *in.Histogram)
	}
	return b.String()
}

// HTML renders the Markdown report. Raw HTML in names and comments is
// dropped.
func HTML(in Input) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.ToHTML([]byte(Markdown(in)), p, renderer)
}

// Render produces the report in format f.
func Render(in Input, f Format) ([]byte, error) {
	switch f {
	case FormatHTML:
		return HTML(in), nil
	case FormatXLSX:
		return XLSX(in)
	default:
		return []byte(Markdown(in)), nil
	}
}

func writeStatistics(b *strings.Builder, list []circstat.Statistic) {
	open := false
	for _, s := range list {
		if s.Empty && s.Section != "" && isHeader(s.Name) {
			b.WriteString(fmt.Sprintf("\n## %s\n\n", s.Name))
			b.WriteString("| Statistic | Value |\n|---|---:|\n")
			open = true
			continue
		}
		if !open {
			b.WriteString("| Statistic | Value |\n|---|---:|\n")
			open = true
		}
		value := s.ValueString()
		if value == "" {
			value = "n/a"
		}
		b.WriteString(fmt.Sprintf("| %s | %s |\n", escape(s.Name), value))
	}
	b.WriteString("\n")
}

func writeHistogram(b *strings.Builder, h circstat.Histogram) {
	title := "Sectors"
	if h.BiDirectional {
		title = "Sectors (bidirectional)"
	}
	b.WriteString(fmt.Sprintf("## %s\n\n", title))
	b.WriteString("| Sector | From | To | Count | Percent |\n|---:|---:|---:|---:|---:|\n")
	for i, c := range h.Counts {
		from, to := sectorBounds(h, i)
		b.WriteString(fmt.Sprintf("| %d | %.1f | %.1f | %d | %.2f |\n", i+1, from, to, c, h.Percents[i]))
	}
	b.WriteString("\n")

	if sum, err := h.Summarize(); err == nil {
		b.WriteString(fmt.Sprintf("Sector counts: mean %.3f, standard deviation %.3f, max %.0f.\n\n",
			sum.Mean, sum.StdDev, sum.Max))
	}
}

// sectorBounds returns the arc of sector i. The last sector closes the
// circle and may be narrower.
func sectorBounds(h circstat.Histogram, i int) (from, to float64) {
	from = h.SectorStart(i)
	to = from + h.SectorSize
	if i == len(h.Counts)-1 {
		to = h.SectorStart(0)
		if to <= from {
			to += 360
		}
	}
	return from, to
}

func isHeader(name string) bool {
	return name == circstat.NameUnidirectional || name == circstat.NameBidirectional
}

// escape keeps table pipes from breaking the layout.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
