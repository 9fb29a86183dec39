package main

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"excelplotter/internal/config"
	"excelplotter/internal/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Upload:  config.UploadConfig{MaxBytes: 1 << 20, MaxRows: 100, RatePerSecond: 1000, RateBurst: 1000},
		Session: config.SessionConfig{TTL: time.Minute},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*app, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	a := newApp(cfg, logger, metrics.New())
	return a, a.routes()
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func regionRows() [][]any {
	return [][]any{
		{"region", "amount"},
		{"A", 10},
		{"A", 5},
		{"B", 7},
	}
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// uploadRegions uploads the region workbook and returns the session cookie.
func uploadRegions(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	w := serve(h, uploadRequest(t, "/upload", "sales.xlsx", xlsxBytes(t, regionRows())))
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func get(t *testing.T, h http.Handler, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	return serve(h, r)
}
