package sheet

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// GroupSum partitions the rows of t by the value of column and sums every
// other numeric or boolean column per partition. Missing values count as
// zero and true counts as one. Text and temporal columns other than the
// grouping column are dropped.
//
// The grouping column comes first in the result, followed by the summed
// columns in table order. Partitions appear in the order their key is first
// seen; a missing key is a partition of its own.
func GroupSum(t *Table, column string) (*Table, error) {
	if !slices.Contains(NonTemporalColumns(t), column) {
		return nil, fmt.Errorf("%w: %q is not a non-temporal column", ErrInvalidGroupColumn, column)
	}
	key := t.Column(column)

	index := make(map[any]int)
	var keys []any
	rowGroup := make([]int, len(key.Values))
	for i, v := range key.Values {
		g, ok := index[v]
		if !ok {
			g = len(keys)
			index[v] = g
			keys = append(keys, v)
		}
		rowGroup[i] = g
	}

	out := &Table{Columns: []*Column{{Name: key.Name, Kind: key.Kind, Values: keys}}}
	for _, c := range t.Columns {
		if c == key || !c.Summable() {
			continue
		}
		sums := make([]decimal.Decimal, len(keys))
		for i, v := range c.Values {
			sums[rowGroup[i]] = sums[rowGroup[i]].Add(numericValue(v))
		}
		values := make([]any, len(keys))
		for g, s := range sums {
			values[g] = s.InexactFloat64()
		}
		out.Columns = append(out.Columns, &Column{Name: c.Name, Kind: KindNumber, Values: values})
	}
	return out, nil
}

func numericValue(v any) decimal.Decimal {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x)
	case bool:
		if x {
			return decimal.NewFromInt(1)
		}
	}
	return decimal.Zero
}
