// Package web holds the server-rendered pages of the healthart web app.
//
// # Templates
//
// Pages are html/template files embedded from templates/. Every page is rendered inside
// base.html, which provides the layout and the auth-aware navigation.
//
//   - index.html: landing page with a login or generate link
//   - art.html: generated image, recovery score and the prompt that produced it
//   - error.html: user-safe error message
//   - callback.html: confirmation shown by the CLI login flow
//
// Handlers pass a [Page] value; Body carries the page-specific data.
package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data passed to every template.
type Page struct {
	Title         string
	Authenticated bool
	Body          any
}

// ArtView is the body of art.html.
type ArtView struct {
	ID            string
	RecoveryScore float64
	Metrics       []string
	Prompt        string
	ContentType   string
	Image         []byte
}

// ErrorView is the body of error.html.
type ErrorView struct {
	Status  int
	Message string
}

// Pages renders the embedded templates.
type Pages struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"dataURI": func(contentType string, data []byte) template.URL {
		return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
	},
}

// NewPages parses each page together with the base layout.
func NewPages() (*Pages, error) {
	names := []string{"index.html", "art.html", "error.html", "callback.html"}
	p := &Pages{pages: make(map[string]*template.Template, len(names))}

	for _, name := range names {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// Render executes the named page into w.
//
// Output is buffered so a template error never leaves a half-written response.
func (p *Pages) Render(w io.Writer, name string, page Page) error {
	t, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
