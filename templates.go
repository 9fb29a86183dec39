// templates.go
package main

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatSize": formatFileSize,
}

var uploadTemplate = template.Must(template.New("upload.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/upload.html"))
var displayTemplate = template.Must(template.New("display.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/display.html"))

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
