// types.go
package main

import (
	"errors"
	"html/template"
)

var (
	errNoSession    = errors.New("no spreadsheet uploaded in this session")
	errBadUpload    = errors.New("invalid upload")
	errFileType     = errors.New("only .xlsx files are supported")
	errFileTooLarge = errors.New("file too large")
	errTooManyRows  = errors.New("too many rows")
)

type UploadPage struct {
	Warning string
	MaxSize int64
}

// DisplayData feeds display.html.
type DisplayData struct {
	FileName    string
	FileSize    int64
	RowCount    int
	ColCount    int
	Headers     []string
	Rows        [][]string
	Truncated   bool
	Columns     []string
	Selected    string
	Warning     string
	Grouped     *TableView
	ChartSVG    template.HTML
	ChartNotice string
}

type TableView struct {
	Headers []string
	Rows    [][]string
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Selectable bool   `json:"selectable"`
}

type TableSummary struct {
	FileName string       `json:"file_name,omitempty"`
	Rows     int          `json:"rows"`
	Columns  []ColumnInfo `json:"columns"`
}

type GroupedResponse struct {
	Column  string   `json:"column"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
	Chart   any      `json:"chart"`
}

type columnQuery struct {
	Column string `validate:"required,max=255"`
}

type viewQuery struct {
	Column string `validate:"max=255"`
}

type chartQuery struct {
	Column string `validate:"required,max=255"`
	Format string `validate:"omitempty,oneof=html png"`
}
