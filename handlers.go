// handlers.go
package main

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"excelplotter/internal/chart"
	"excelplotter/internal/download"
	"excelplotter/internal/metrics"
	"excelplotter/internal/session"
	"excelplotter/internal/sheet"
)

// previewRows caps the rows rendered in the preview table.
const previewRows = 500

func (a *app) uploadPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	a.renderUpload(w, http.StatusOK, "")
}

func (a *app) uploadHandler(w http.ResponseWriter, r *http.Request) {
	st, err := a.loadUpload(w, r)
	a.metrics.Uploads.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		a.logger.Warn("upload rejected", slog.String("error", err.Error()))
		a.renderUpload(w, statusFor(err), warningFor(err))
		return
	}
	a.metrics.LoadedRows.Observe(float64(st.Table.NumRows()))
	a.sessions.Put(w, r, st)
	a.logger.Info("spreadsheet loaded",
		slog.String("file", st.FileName),
		slog.Int("rows", st.Table.NumRows()),
		slog.Int("columns", st.Table.NumCols()),
	)
	http.Redirect(w, r, "/view", http.StatusSeeOther)
}

// loadUpload reads the "file" form field and loads it as a table. Files
// that load but offer no column to group by are rejected here, before any
// table is shown.
func (a *app) loadUpload(w http.ResponseWriter, r *http.Request) (*session.State, error) {
	limit := a.cfg.Upload.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w (limit %s)", errFileTooLarge, formatFileSize(limit))
		}
		return nil, fmt.Errorf("%w: %v", errBadUpload, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadUpload, err)
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		return nil, errFileType
	}

	t, err := sheet.Load(file)
	if err != nil {
		return nil, err
	}
	if t.NumRows() > a.cfg.Upload.MaxRows {
		return nil, fmt.Errorf("%w (> %d)", errTooManyRows, a.cfg.Upload.MaxRows)
	}
	if _, err := sheet.SelectableColumns(t); err != nil {
		return nil, err
	}

	return &session.State{
		Table:      t,
		FileName:   header.Filename,
		FileSize:   header.Size,
		UploadedAt: time.Now(),
	}, nil
}

func (a *app) viewHandler(w http.ResponseWriter, r *http.Request) {
	st := a.sessions.Get(r)
	if st == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := newDisplayData(st)
	status := http.StatusOK
	q := viewQuery{Column: r.URL.Query().Get("column")}
	if err := a.validate.Struct(q); err != nil {
		data.Warning = warningFor(err)
		status = statusFor(err)
	} else {
		data.Selected = q.Column
		if data.Selected == "" && len(data.Columns) > 0 {
			data.Selected = data.Columns[0]
		}
		if err := a.analyse(&data, st.Table); err != nil {
			a.logger.Warn("analysis failed", slog.String("column", data.Selected), slog.String("error", err.Error()))
			data.Warning = warningFor(err)
			switch {
			case errors.Is(err, sheet.ErrInvalidGroupColumn):
				data.Warning = fmt.Sprintf("The selected column %q does not exist in the table.", data.Selected)
			case errors.Is(err, sheet.ErrSerialization):
				data.Warning = "The chart could not be drawn: " + err.Error()
			}
			status = statusFor(err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := displayTemplate.Execute(w, data); err != nil {
		a.logger.Error("template error", slog.String("template", "display.html"), slog.String("error", err.Error()))
	}
}

func newDisplayData(st *session.State) DisplayData {
	preview := sheet.Preview(st.Table)
	data := DisplayData{
		FileName: st.FileName,
		FileSize: st.FileSize,
		RowCount: st.Table.NumRows(),
		ColCount: st.Table.NumCols(),
		Columns:  preview.Names(),
	}
	view := newTableView(preview, previewRows)
	data.Headers, data.Rows = view.Headers, view.Rows
	data.Truncated = preview.NumRows() > previewRows
	return data
}

// analyse groups the table on data.Selected and renders the chart. A grouped
// table with nothing to plot leaves a notice instead of a chart; any other
// render failure is returned.
func (a *app) analyse(data *DisplayData, t *sheet.Table) error {
	grouped, err := sheet.GroupSum(t, data.Selected)
	a.metrics.Aggregations.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	data.Grouped = newTableView(grouped, grouped.NumRows())

	c, err := chart.Build(grouped, data.Selected)
	if err != nil {
		return err
	}
	if len(c.Bars) == 0 {
		data.ChartNotice = fmt.Sprintf("Nothing to plot: no numeric column to sum by %q.", data.Selected)
		return nil
	}
	svg, err := c.SVG()
	if err != nil {
		return err
	}
	data.ChartSVG = template.HTML(svg)
	return nil
}

func newTableView(t *sheet.Table, limit int) *TableView {
	n := min(t.NumRows(), limit)
	v := &TableView{Headers: t.Names(), Rows: make([][]string, n)}
	for i := 0; i < n; i++ {
		row := make([]string, t.NumCols())
		for j, value := range t.Row(i) {
			row[j] = sheet.FormatValue(value)
		}
		v.Rows[i] = row
	}
	return v
}

func (a *app) downloadGroupedHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.groupedPayload(r)
	a.sendDownload(w, "grouped", p, err)
}

func (a *app) downloadEntireHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.entirePayload(r)
	a.sendDownload(w, "entire", p, err)
}

func (a *app) downloadChartHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.chartPayload(r)
	a.sendDownload(w, "chart", p, err)
}

func (a *app) groupedPayload(r *http.Request) (download.Payload, error) {
	st := a.sessions.Get(r)
	if st == nil {
		return download.Payload{}, errNoSession
	}
	q := columnQuery{Column: r.URL.Query().Get("column")}
	if err := a.validate.Struct(q); err != nil {
		return download.Payload{}, err
	}
	grouped, err := sheet.GroupSum(st.Table, q.Column)
	if err != nil {
		return download.Payload{}, err
	}
	data, err := sheet.EncodeTable(grouped)
	if err != nil {
		return download.Payload{}, err
	}
	return download.New(download.GroupedTableFile, download.ContentTypeXLSX, data), nil
}

func (a *app) entirePayload(r *http.Request) (download.Payload, error) {
	st := a.sessions.Get(r)
	if st == nil {
		return download.Payload{}, errNoSession
	}
	data, err := sheet.EncodeTable(st.Table)
	if err != nil {
		return download.Payload{}, err
	}
	return download.New(download.EntireTableFile, download.ContentTypeXLSX, data), nil
}

func (a *app) chartPayload(r *http.Request) (download.Payload, error) {
	st := a.sessions.Get(r)
	if st == nil {
		return download.Payload{}, errNoSession
	}
	q := chartQuery{Column: r.URL.Query().Get("column"), Format: r.URL.Query().Get("format")}
	if err := a.validate.Struct(q); err != nil {
		return download.Payload{}, err
	}
	grouped, err := sheet.GroupSum(st.Table, q.Column)
	if err != nil {
		return download.Payload{}, err
	}
	c, err := chart.Build(grouped, q.Column)
	if err != nil {
		return download.Payload{}, err
	}
	if q.Format == "png" {
		data, err := chart.EncodePNG(c)
		if err != nil {
			return download.Payload{}, err
		}
		return download.New(download.ChartPNGFile, download.ContentTypePNG, data), nil
	}
	data, err := chart.EncodeHTML(c)
	if err != nil {
		return download.Payload{}, err
	}
	return download.New(download.ChartHTMLFile, download.ContentTypeHTML, data), nil
}

// sendDownload writes p, or a failed-download notice when err is set. The
// session is left untouched either way.
func (a *app) sendDownload(w http.ResponseWriter, kind string, p download.Payload, err error) {
	a.metrics.Downloads.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	if err != nil {
		a.logger.Warn("download failed", slog.String("kind", kind), slog.String("error", err.Error()))
		http.Error(w, "Download failed: "+warningFor(err), statusFor(err))
		return
	}
	if err := p.Write(w); err != nil {
		a.logger.Error("download write failed", slog.String("kind", kind), slog.String("error", err.Error()))
	}
}

func (a *app) renderUpload(w http.ResponseWriter, status int, warning string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := UploadPage{Warning: warning, MaxSize: a.cfg.Upload.MaxBytes}
	if err := uploadTemplate.Execute(w, page); err != nil {
		a.logger.Error("template error", slog.String("template", "upload.html"), slog.String("error", err.Error()))
	}
}

// statusFor maps an interaction error to its HTTP status.
func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, errNoSession):
		return http.StatusNotFound
	case errors.Is(err, errFileTooLarge), errors.Is(err, errTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verr),
		errors.Is(err, errBadUpload),
		errors.Is(err, errFileType),
		errors.Is(err, sheet.ErrInvalidGroupColumn),
		errors.Is(err, sheet.ErrNotNumeric),
		errors.Is(err, sheet.ErrColumnNotFound):
		return http.StatusBadRequest
	case errors.Is(err, sheet.ErrUnreadableFile),
		errors.Is(err, sheet.ErrEmptyFile),
		errors.Is(err, sheet.ErrNoSelectableColumns),
		errors.Is(err, sheet.ErrSerialization):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// warningFor phrases an interaction error for the page.
func warningFor(err error) string {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, sheet.ErrUnreadableFile):
		return "The uploaded file could not be read as an Excel workbook."
	case errors.Is(err, sheet.ErrEmptyFile):
		return "The uploaded file has no data rows."
	case errors.Is(err, sheet.ErrNoSelectableColumns):
		return "Every column in this file holds dates or times, so there is nothing to group by."
	case errors.Is(err, sheet.ErrSerialization):
		return "The file could not be generated: " + err.Error()
	case errors.As(err, &verr):
		return "Invalid request: " + verr.Error()
	default:
		return err.Error()
	}
}
