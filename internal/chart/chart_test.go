package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excelplotter/internal/sheet"
)

func groupedRegions(t *testing.T) *sheet.Table {
	t.Helper()
	tbl := &sheet.Table{Columns: []*sheet.Column{
		{Name: "region", Kind: sheet.KindText, Values: []any{"A", "A", "B", nil}},
		{Name: "note", Kind: sheet.KindText, Values: []any{"x", "y", "z", "w"}},
		{Name: "amount", Kind: sheet.KindNumber, Values: []any{10.0, 5.0, 7.0, 1.0}},
	}}
	grouped, err := sheet.GroupSum(tbl, "region")
	require.NoError(t, err)
	return grouped
}

func TestBuild(t *testing.T) {
	c, err := Build(groupedRegions(t), "region")
	require.NoError(t, err)

	assert.Equal(t, "region Analysis", c.Title)
	assert.Equal(t, "region", c.XLabel)
	assert.Equal(t, "amount", c.YLabel)
	assert.Equal(t, []Bar{
		{Label: "A", Value: 15},
		{Label: "B", Value: 7},
		{Label: "(blank)", Value: 1},
	}, c.Bars)
}

func TestBuild_NoNumericColumn(t *testing.T) {
	tbl := &sheet.Table{Columns: []*sheet.Column{
		{Name: "region", Kind: sheet.KindText, Values: []any{"A", "B"}},
		{Name: "note", Kind: sheet.KindText, Values: []any{"x", "y"}},
	}}
	grouped, err := sheet.GroupSum(tbl, "region")
	require.NoError(t, err)

	c, err := Build(grouped, "region")
	require.NoError(t, err)
	assert.Equal(t, "region Analysis", c.Title)
	assert.Empty(t, c.Bars)

	_, err = EncodeHTML(c)
	assert.ErrorIs(t, err, sheet.ErrSerialization)
	_, err = EncodePNG(c)
	assert.ErrorIs(t, err, sheet.ErrSerialization)
}

func TestBuild_UnknownColumn(t *testing.T) {
	_, err := Build(groupedRegions(t), "missing")
	assert.ErrorIs(t, err, sheet.ErrInvalidGroupColumn)
}

func TestEncodeHTML(t *testing.T) {
	c, err := Build(groupedRegions(t), "region")
	require.NoError(t, err)

	data, err := EncodeHTML(c)
	require.NoError(t, err)
	page := string(data)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>region Analysis</title>")
	assert.Contains(t, page, "<svg")
	assert.Contains(t, page, "<td>(blank)</td>")
	assert.Contains(t, page, "15.00")
	assert.NotContains(t, page, "<script")
}

func TestEncodeHTML_Deterministic(t *testing.T) {
	c, err := Build(groupedRegions(t), "region")
	require.NoError(t, err)

	first, err := EncodeHTML(c)
	require.NoError(t, err)
	second, err := EncodeHTML(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodePNG(t *testing.T) {
	c, err := Build(groupedRegions(t), "region")
	require.NoError(t, err)

	data, err := EncodePNG(c)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRender_FlatAndNegativeValues(t *testing.T) {
	for _, bars := range [][]Bar{
		{{Label: "a", Value: 0}, {Label: "b", Value: 0}},
		{{Label: "a", Value: -3}, {Label: "b", Value: 4}},
	} {
		c := &Chart{Title: "t Analysis", XLabel: "t", YLabel: "v", Bars: bars}
		svg, err := c.SVG()
		require.NoError(t, err)
		assert.Contains(t, string(svg), "<svg")
	}
}

func TestBarChart_BarsStartAtZero(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"mixed signs", []float64{-3, 4}, -3, 4},
		{"all negative", []float64{-5, -2}, -5, 0},
		{"all positive", []float64{2, 6}, 0, 6},
		{"all zero", []float64{0, 0}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Chart{Title: "k Analysis", XLabel: "k", YLabel: "v"}
			for i, v := range tt.values {
				c.Bars = append(c.Bars, Bar{Label: string(rune('a' + i)), Value: v})
			}

			graph := c.barChart()
			assert.True(t, graph.UseBaseValue)
			assert.Zero(t, graph.BaseValue)
			require.NotNil(t, graph.YAxis.Range)
			assert.Equal(t, tt.lo, graph.YAxis.Range.GetMin())
			assert.Equal(t, tt.hi, graph.YAxis.Range.GetMax())
			require.Len(t, graph.Bars, len(tt.values))
			for i, v := range tt.values {
				assert.Equal(t, v, graph.Bars[i].Value)
			}
		})
	}
}

func TestRender_EscapesWorkbookText(t *testing.T) {
	c := &Chart{
		Title:  "<b>x</b> Analysis",
		XLabel: "<b>x</b>",
		YLabel: `amount"><script>alert(1)</script>`,
		Bars: []Bar{
			{Label: "<script>alert(1)</script>", Value: 1},
			{Label: "<img src=x onerror=alert(1)>", Value: 2},
			{Label: "R&D", Value: 3},
		},
	}

	svg, err := c.SVG()
	require.NoError(t, err)
	assert.NotContains(t, string(svg), "<script")
	assert.NotContains(t, string(svg), "<img")
	assert.NotContains(t, string(svg), "<b>")

	page, err := EncodeHTML(c)
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script")
	assert.NotContains(t, string(page), "<img")
	assert.Contains(t, string(page), "<td>&lt;script&gt;alert(1)&lt;/script&gt;</td>")
	assert.Contains(t, string(page), "<td>R&amp;D</td>")
}

func TestSVGText(t *testing.T) {
	assert.Equal(t, "plain label", svgText("plain label"))
	assert.Equal(t, "\u2039b\u203a", svgText("<b>"))
	assert.NotContains(t, svgText(`a&b"c'd`), "&")
}
