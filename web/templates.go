package web

import (
	"embed"
	"html/template"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"size": func(n int64) string { return humanize.IBytes(uint64(n)) },
	}).ParseFS(templateFS, "templates/*.tmpl"))
}
