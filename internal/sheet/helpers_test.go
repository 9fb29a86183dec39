package sheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook writes rows into the first sheet of a new workbook and returns the
// xlsx bytes.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	return workbookWith(t, rows, nil)
}

// workbookWith is workbook with a hook to adjust the file before it is saved.
func workbookWith(t *testing.T, rows [][]any, edit func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	if edit != nil {
		edit(f)
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func loadRows(t *testing.T, rows [][]any) *Table {
	t.Helper()
	tbl, err := Load(bytes.NewReader(workbook(t, rows)))
	require.NoError(t, err)
	return tbl
}

func regionTable() *Table {
	return &Table{Columns: []*Column{
		{Name: "region", Kind: KindText, Values: []any{"A", "A", "B"}},
		{Name: "amount", Kind: KindNumber, Values: []any{10.0, 5.0, 7.0}},
	}}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
