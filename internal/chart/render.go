package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"

	"excelplotter/internal/sheet"
)

const (
	chartHeight = 512
	minWidth    = 640
	barWidth    = 48
	barSpacing  = 24
	sidePadding = 120
)

var pageTemplate = template.Must(template.New("chart").Funcs(template.FuncMap{
	"formatNumber": formatNumber,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Chart.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-top: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 4px 10px; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Chart.Title}}</h1>
<figure>{{.SVG}}</figure>
<table>
<thead><tr><th>{{.Chart.XLabel}}</th><th>{{.Chart.YLabel}}</th></tr></thead>
<tbody>
{{range .Chart.Bars}}<tr><td>{{.Label}}</td><td class="num">{{formatNumber .Value}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// SVG renders the chart as an SVG image.
func (c *Chart) SVG() ([]byte, error) {
	return c.render(gochart.SVG)
}

// EncodeHTML renders c as a self-contained HTML page: the chart is inlined
// as SVG and followed by a table of its values. A chart with no bars cannot
// be encoded.
func EncodeHTML(c *Chart) ([]byte, error) {
	svg, err := c.SVG()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Chart *Chart
		SVG   template.HTML
	}{c, template.HTML(svg)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet.ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

// EncodePNG renders c as a PNG image.
func EncodePNG(c *Chart) ([]byte, error) {
	return c.render(gochart.PNG)
}

func (c *Chart) render(provider gochart.RendererProvider) ([]byte, error) {
	if len(c.Bars) == 0 {
		return nil, fmt.Errorf("%w: chart %q has no data points", sheet.ErrSerialization, c.Title)
	}
	graph := c.barChart()
	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("%w: render %q: %v", sheet.ErrSerialization, c.Title, err)
	}
	return buf.Bytes(), nil
}

// barChart lays out c for go-chart. Bars grow from zero in either direction
// and the y range always includes zero.
func (c *Chart) barChart() gochart.BarChart {
	bars := make([]gochart.Value, len(c.Bars))
	lo, hi := 0.0, 0.0
	for i, b := range c.Bars {
		bars[i] = gochart.Value{Label: svgText(b.Label), Value: b.Value}
		lo, hi = min(lo, b.Value), max(hi, b.Value)
	}
	if lo == hi {
		hi = 1
	}

	return gochart.BarChart{
		Title:        svgText(c.Title),
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:        max(minWidth, len(bars)*(barWidth+barSpacing)+sidePadding),
		Height:       chartHeight,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:  svgText(c.YLabel),
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
}

// go-chart writes text into the SVG as given, so markup characters in
// labels taken from the workbook are swapped for lookalikes.
var svgReplacer = strings.NewReplacer(
	"&", "\uff06",
	"<", "\u2039",
	">", "\u203a",
	`"`, "\uff02",
	"'", "\uff07",
)

func svgText(s string) string {
	return svgReplacer.Replace(s)
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
