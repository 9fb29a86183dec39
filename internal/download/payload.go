// Package download wraps encoded export bytes for delivery to the browser.
package download

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePNG  = "image/png"
)

// Default filenames, one per export kind.
const (
	GroupedTableFile = "grouped_data.xlsx"
	EntireTableFile  = "entire_data.xlsx"
	ChartHTMLFile    = "plot.html"
	ChartPNGFile     = "plot.png"
)

// Payload is an encoded file and the name it should be saved under.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func New(filename, contentType string, data []byte) Payload {
	return Payload{Filename: filename, ContentType: contentType, Data: data}
}

// Write sends the payload as an attachment.
func (p Payload) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(p.Data); err != nil {
		return fmt.Errorf("write %s: %w", p.Filename, err)
	}
	return nil
}
