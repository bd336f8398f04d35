package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page template.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full index page.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
