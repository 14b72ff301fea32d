// Package web holds the server-rendered admin pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"pct": func(part, whole int) string {
			if whole <= 0 {
				return "0%"
			}
			return fmt.Sprintf("%.0f%%", float64(part)*100/float64(whole))
		},
	}).ParseFS(files, "templates/*.html")
}
