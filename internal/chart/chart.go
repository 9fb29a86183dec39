// Package chart builds bar charts from grouped tables and renders them as
// standalone documents.
package chart

import (
	"fmt"

	"excelplotter/internal/sheet"
)

const blankLabel = "(blank)"

// Bar is one category on the x axis and its height.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a single-series bar chart.
type Chart struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Bars   []Bar  `json:"bars"`
}

// Build makes one bar per row of a grouped table. The x axis is the grouping
// column and the bar height is the first numeric column after it. A table
// without a numeric column gives a chart with no bars.
func Build(grouped *sheet.Table, column string) (*Chart, error) {
	key := grouped.Column(column)
	if key == nil {
		return nil, fmt.Errorf("%w: %q is not in the grouped table", sheet.ErrInvalidGroupColumn, column)
	}

	c := &Chart{
		Title:  column + " Analysis",
		XLabel: column,
	}
	var measure *sheet.Column
	for _, col := range grouped.Columns {
		if col != key && col.Kind == sheet.KindNumber {
			measure = col
			break
		}
	}
	if measure == nil {
		return c, nil
	}

	c.YLabel = measure.Name
	c.Bars = make([]Bar, len(key.Values))
	for i, v := range key.Values {
		label := sheet.FormatValue(v)
		if v == nil {
			label = blankLabel
		}
		value, _ := measure.Values[i].(float64)
		c.Bars[i] = Bar{Label: label, Value: value}
	}
	return c, nil
}
