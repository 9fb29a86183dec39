package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// EncodeTable writes t as an xlsx workbook with a header row and one row per
// table row.
func EncodeTable(t *Table) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if t.NumRows()+1 > excelize.TotalRows || t.NumCols() > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: %d rows by %d columns exceeds sheet limits", ErrSerialization, t.NumRows(), t.NumCols())
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, t.NumCols())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	for i := 0; i < t.NumRows(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		row := t.Row(i)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrSerialization, i, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}
