// api.go
package main

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"excelplotter/internal/chart"
	"excelplotter/internal/metrics"
	"excelplotter/internal/sheet"
)

// problem is an RFC 7807 error document.
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

func (p *problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func (a *app) apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	a.logger.WarnContext(r.Context(), "api request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	p := &problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.Path,
		TraceID:  middleware.GetReqID(r.Context()),
	}
	if err := render.Render(w, r, p); err != nil {
		a.logger.Error("render problem", slog.String("error", err.Error()))
	}
}

func (a *app) healthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
		"sessions":  a.sessions.Len(),
	})
}

// validateFileHandler loads an uploaded file and describes it without
// storing it in the session.
func (a *app) validateFileHandler(w http.ResponseWriter, r *http.Request) {
	st, err := a.loadUpload(w, r)
	if err != nil {
		a.apiError(w, r, err)
		return
	}
	summary := summarize(st.Table)
	summary.FileName = st.FileName
	render.JSON(w, r, APIResponse{Success: true, Data: summary})
}

func (a *app) tableHandler(w http.ResponseWriter, r *http.Request) {
	st := a.sessions.Get(r)
	if st == nil {
		a.apiError(w, r, errNoSession)
		return
	}
	summary := summarize(st.Table)
	summary.FileName = st.FileName
	render.JSON(w, r, APIResponse{Success: true, Data: summary})
}

func (a *app) groupsHandler(w http.ResponseWriter, r *http.Request) {
	st := a.sessions.Get(r)
	if st == nil {
		a.apiError(w, r, errNoSession)
		return
	}
	q := columnQuery{Column: r.URL.Query().Get("column")}
	if err := a.validate.Struct(q); err != nil {
		a.apiError(w, r, err)
		return
	}

	grouped, err := sheet.GroupSum(st.Table, q.Column)
	a.metrics.Aggregations.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		a.apiError(w, r, err)
		return
	}
	c, err := chart.Build(grouped, q.Column)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	resp := GroupedResponse{
		Column:  q.Column,
		Headers: grouped.Names(),
		Rows:    make([][]any, grouped.NumRows()),
		Chart:   c,
	}
	for i := range resp.Rows {
		resp.Rows[i] = grouped.Row(i)
	}
	render.JSON(w, r, APIResponse{Success: true, Data: resp})
}

func (a *app) statsHandler(w http.ResponseWriter, r *http.Request) {
	st := a.sessions.Get(r)
	if st == nil {
		a.apiError(w, r, errNoSession)
		return
	}
	q := columnQuery{Column: r.URL.Query().Get("column")}
	if err := a.validate.Struct(q); err != nil {
		a.apiError(w, r, err)
		return
	}
	stats, err := sheet.Describe(st.Table, q.Column)
	if err != nil {
		a.apiError(w, r, err)
		return
	}
	render.JSON(w, r, APIResponse{Success: true, Data: stats})
}

func summarize(t *sheet.Table) TableSummary {
	selectable := sheet.NonTemporalColumns(t)
	s := TableSummary{Rows: t.NumRows(), Columns: make([]ColumnInfo, t.NumCols())}
	for i, c := range t.Columns {
		s.Columns[i] = ColumnInfo{
			Name:       c.Name,
			Kind:       c.Kind.String(),
			Selectable: slices.Contains(selectable, c.Name),
		}
	}
	return s
}
