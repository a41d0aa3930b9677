package report

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jengzang/rose-backend-go/internal/circstat"
	"github.com/jengzang/rose-backend-go/internal/dataset"
)

func sampleInput(t *testing.T, axial bool) Input {
	t.Helper()
	e := circstat.New(circstat.Values{5, 95, 185, 275, 10})
	p := circstat.Params{SectorSize: 90, BiDirectional: axial}

	stats, err := e.CurrentStatistics(p, axial)
	require.NoError(t, err)
	h, err := e.SectorHistogram(p)
	require.NoError(t, err)

	return Input{
		Name:       "Joints | set A",
		Comment:    "Measured in the north quarry.",
		Provenance: dataset.Provenance{Table: "joints", Column: "strike", Predicate: "dip > 30"},
		Statistics: stats,
		Histogram:  &h,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatMarkdown, true},
		{"markdown", FormatMarkdown, true},
		{" HTML ", FormatHTML, true},
		{"xlsx", FormatXLSX, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Contains(t, FormatHTML.ContentType(), "text/html")
	assert.Contains(t, FormatMarkdown.ContentType(), "text/markdown")
}

func TestMarkdownDescribesDataset(t *testing.T) {
	md := Markdown(sampleInput(t, false))

	assert.True(t, strings.HasPrefix(md, `# Joints \| set A`))
	assert.Contains(t, md, "Measured in the north quarry.")
	assert.Contains(t, md, "Source: `joints.strike` where `dip > 30`")
	assert.Contains(t, md, "| N | 5 |")
	assert.Contains(t, md, "## Unidirectional Statistics")
	assert.NotContains(t, md, "## Bidirectional Statistics")
	assert.Contains(t, md, "| "+circstat.NameMeanDirection+" | ")
	assert.Contains(t, md, "## Sectors\n")
	assert.Contains(t, md, "| 1 | 0.0 | 90.0 | 2 | 40.00 |")
	assert.Contains(t, md, "| 4 | 270.0 | 360.0 | 1 | 20.00 |")
	assert.Contains(t, md, "Sector counts: mean 1.250")
}

func TestMarkdownAxialSections(t *testing.T) {
	md := Markdown(sampleInput(t, true))

	assert.Contains(t, md, "## Unidirectional Statistics")
	assert.Contains(t, md, "## Bidirectional Statistics")
	assert.Contains(t, md, "## Sectors (bidirectional)")
}

func TestMarkdownWithoutHistogramOrProvenance(t *testing.T) {
	in := sampleInput(t, false)
	in.Histogram = nil
	in.Provenance = dataset.Provenance{}
	in.Comment = ""

	md := Markdown(in)
	assert.NotContains(t, md, "Source:")
	assert.NotContains(t, md, "## Sectors")
}

func TestHTMLRendersTables(t *testing.T) {
	html, err := Render(sampleInput(t, false), FormatHTML)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Unidirectional Statistics")

	md, err := Render(sampleInput(t, false), FormatMarkdown)
	require.NoError(t, err)
	raw := string(md)
	assert.True(t, strings.HasPrefix(raw, "# "))
}

func TestHTMLDropsEmbeddedMarkup(t *testing.T) {
	in := sampleInput(t, false)
	in.Name = "Joints <script>alert(1)</script>"
	in.Comment = "<img src=x onerror=alert(2)>"

	out := string(HTML(in))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "Joints")
	assert.Contains(t, out, "<table>")
}

func TestXLSXWorkbook(t *testing.T) {
	out, err := Render(sampleInput(t, false), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{statisticsSheet, sectorsSheet}, f.GetSheetList())

	stats, err := f.GetRows(statisticsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Statistic", "Value"}, stats[0])
	found := false
	for _, row := range stats[1:] {
		if len(row) == 3 && row[1] == circstat.NameN {
			assert.Equal(t, "5", row[2])
			found = true
		}
		assert.NotEqual(t, circstat.NameUnidirectional, row[1])
	}
	assert.True(t, found)

	sectors, err := f.GetRows(sectorsSheet)
	require.NoError(t, err)
	require.Len(t, sectors, 5)
	require.Len(t, sectors[1], 5)
	assert.Equal(t, []string{"1", "0", "90", "2"}, sectors[1][:4])
	percent, err := strconv.ParseFloat(sectors[1][4], 64)
	require.NoError(t, err)
	assert.InDelta(t, 40, percent, 1e-6)
	assert.Equal(t, "360", sectors[4][2])
}

func TestXLSXWithoutHistogram(t *testing.T) {
	in := sampleInput(t, false)
	in.Histogram = nil
	out, err := XLSX(in)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{statisticsSheet}, f.GetSheetList())
}
