// Package sheet holds the in-memory table model and the operations that load,
// classify, group and export it.
package sheet

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Column is a named sequence of values of one kind. A nil value is a
// missing cell; any other value has the Go type matching Kind
// (float64, string, time.Time or bool).
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Summable reports whether the column can be summed.
func (c *Column) Summable() bool {
	return c.Kind == KindNumber || c.Kind == KindBool
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Columns []*Column
}

// NumRows returns the number of rows, taken from the first column.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Select returns a table holding only the named columns, in the order given.
// The column value slices are shared with t.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{Columns: make([]*Column, 0, len(names))}
	for _, name := range names {
		c := t.Column(name)
		if c == nil {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		out.Columns = append(out.Columns, c)
	}
	return out, nil
}

// Validate checks that column names are unique, columns have equal length
// and every value matches its column kind.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	rows := t.NumRows()
	for _, c := range t.Columns {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Values) != rows {
			return fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
		for i, v := range c.Values {
			if !kindMatches(c.Kind, v) {
				return fmt.Errorf("column %q row %d: %T is not a %s value", c.Name, i, v, c.Kind)
			}
		}
	}
	return nil
}

func kindMatches(k Kind, v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case float64:
		return k == KindNumber
	case string:
		return k == KindText
	case time.Time:
		return k == KindTime
	case bool:
		return k == KindBool
	}
	return false
}

// FormatValue renders a cell value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}
