package sheet

// NonTemporalColumns returns, in table order, the names of the columns whose
// kind is not temporal. Only column kinds are consulted.
func NonTemporalColumns(t *Table) []string {
	names := make([]string, 0, t.NumCols())
	for _, c := range t.Columns {
		if c.Kind != KindTime {
			names = append(names, c.Name)
		}
	}
	return names
}

// SelectableColumns is NonTemporalColumns for a selection control: an empty
// result is reported as ErrNoSelectableColumns.
func SelectableColumns(t *Table) ([]string, error) {
	names := NonTemporalColumns(t)
	if len(names) == 0 {
		return nil, ErrNoSelectableColumns
	}
	return names, nil
}

// Preview projects the table onto its non-temporal columns.
func Preview(t *Table) *Table {
	p, _ := t.Select(NonTemporalColumns(t)...)
	return p
}
