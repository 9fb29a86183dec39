package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Load parses the first worksheet of an xlsx workbook. Leading blank rows are
// skipped; the first non-blank row holds the column names and every
// following row is a data row. Column kinds come
// from cell types and number formats, not from the cell text.
func Load(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrUnreadableFile)
	}
	name := sheets[0]
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	rows, skipped := trimBlankRows(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrEmptyFile, name)
	}
	if len(rows) == 1 {
		return nil, fmt.Errorf("%w: sheet %q has a header but no data", ErrEmptyFile, name)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	headers := makeHeaders(rows[0], width)
	data := rows[1:]

	rd := &cellReader{f: f, sheet: name, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		rd.date1904 = *props.Date1904
	}
	t := &Table{Columns: make([]*Column, width)}
	for col := 0; col < width; col++ {
		values := make([]any, len(data))
		kinds := make([]Kind, len(data))
		for i, row := range data {
			var raw string
			if col < len(row) {
				raw = row[col]
			}
			v, k, err := rd.read(col, skipped+i+1, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
			}
			values[i], kinds[i] = v, k
		}
		t.Columns[col] = buildColumn(headers[col], values, kinds)
	}
	return t, nil
}

// trimBlankRows drops blank rows from both ends and reports how many leading
// rows were dropped.
func trimBlankRows(rows [][]string) ([][]string, int) {
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	skipped := 0
	for skipped < len(rows) && isBlankRow(rows[skipped]) {
		skipped++
	}
	return rows[skipped:], skipped
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// makeHeaders names blank headers Column_N and suffixes repeated names with
// .1, .2 and so on so that every name is unique.
func makeHeaders(row []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool, width)
	for i := range headers {
		h := ""
		if i < len(row) {
			h = strings.TrimSpace(row[i])
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

// buildColumn settles the column kind. A column whose non-empty cells share
// one kind keeps it; mixed columns fall back to text.
func buildColumn(name string, values []any, kinds []Kind) *Column {
	kind, mixed, seen := KindNumber, false, false
	for i, v := range values {
		if v == nil {
			continue
		}
		if !seen {
			kind, seen = kinds[i], true
		} else if kinds[i] != kind {
			mixed = true
			break
		}
	}
	if mixed {
		kind = KindText
		for i, v := range values {
			if v != nil {
				values[i] = FormatValue(v)
			}
		}
	}
	return &Column{Name: name, Kind: kind, Values: values}
}

type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// read types one cell. row is zero-based over the whole sheet.
func (rd *cellReader) read(col, row int, raw string) (any, Kind, error) {
	if raw == "" {
		return nil, KindNumber, nil
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, 0, err
	}
	typ, err := rd.f.GetCellType(rd.sheet, ref)
	if err != nil {
		return nil, 0, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), KindBool, nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return t, KindTime, nil
		}
		return raw, KindText, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return raw, KindText, nil
		}
		isDate, err := rd.isDateCell(ref)
		if err != nil {
			return nil, 0, err
		}
		if isDate {
			t, err := excelize.ExcelDateToTime(n, rd.date1904)
			if err != nil {
				return nil, 0, err
			}
			return t, KindTime, nil
		}
		return n, KindNumber, nil
	default:
		return raw, KindText, nil
	}
}

func (rd *cellReader) isDateCell(ref string) (bool, error) {
	id, err := rd.f.GetCellStyle(rd.sheet, ref)
	if err != nil {
		return false, err
	}
	if id == 0 {
		return false, nil
	}
	if isDate, ok := rd.dateStyles[id]; ok {
		return isDate, nil
	}
	style, err := rd.f.GetStyle(id)
	if err != nil {
		return false, err
	}
	isDate := isDateStyle(style)
	rd.dateStyles[id] = isDate
	return isDate, nil
}

func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	id := style.NumFmt
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format renders a date or
// time. Quoted literals, escaped characters and bracketed sections other
// than elapsed-time markers are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	bracket := strings.Builder{}
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
				s := strings.ToLower(bracket.String())
				if s == "h" || s == "hh" || s == "m" || s == "mm" || s == "s" || s == "ss" {
					b.WriteString(s)
				}
				bracket.Reset()
			} else {
				bracket.WriteByte(ch)
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ymdhs")
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
