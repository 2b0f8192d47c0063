package web

import (
	"embed"
	"html/template"
	"io/fs"
)

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/images).
//
//go:embed static/*
var StaticFS embed.FS

// ParseTemplates parses every embedded template with funcs available.
func ParseTemplates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(TemplatesFS, "templates/*.html")
}

// Static returns the static assets rooted at their directory.
func Static() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
