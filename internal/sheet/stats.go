package sheet

import (
	"fmt"
	"math"
	"slices"
)

// Stats summarises the non-missing values of a numeric column.
type Stats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// Describe computes Stats for a numeric or boolean column. A column with no
// values yields a zero Stats with only Column set.
func Describe(t *Table, column string) (Stats, error) {
	c := t.Column(column)
	if c == nil {
		return Stats{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	if !c.Summable() {
		return Stats{}, fmt.Errorf("%w: %q is %s", ErrNotNumeric, column, c.Kind)
	}

	var values []float64
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		values = append(values, numericValue(v).InexactFloat64())
	}
	st := Stats{Column: column, Count: len(values)}
	if len(values) == 0 {
		return st, nil
	}
	st.Sum = sum(values)
	st.Mean = st.Sum / float64(len(values))
	st.Median = median(values)
	st.Min = slices.Min(values)
	st.Max = slices.Max(values)
	st.Std = std(values, st.Mean)
	return st, nil
}

func sum(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func median(vals []float64) float64 {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// std is the sample standard deviation.
func std(vals []float64, mean float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}
