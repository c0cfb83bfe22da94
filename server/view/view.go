// Package view renders the server's HTML pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/indieinfra/gallery/storage/media"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageFront    = "front.html"
	PageImage    = "image.html"
	PageSee      = "see.html"
	PageAddImage = "add_img.html"
	PageVideo    = "vid.html"
)

var pages = []string{PageFront, PageImage, PageSee, PageAddImage, PageVideo}

// Data is the value every page template is executed with.
type Data struct {
	Images   []media.Record
	Videos   []media.Record
	Messages []string
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}

	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}

	return r, nil
}

// Render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Data) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
