// Package web renders the server-side HTML pages of the registration site.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"zignasa/internal/payments"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageHome         = "home"
	PageRegister     = "register"
	PageConfirmation = "confirmation"
)

var funcs = template.FuncMap{
	"rupees": payments.FormatAmount,
	"inc":    func(i int) int { return i + 1 },
}

type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), logger: logger}
	for _, page := range []string{PageHome, PageRegister, PageConfirmation} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes the page with the given status. The page is rendered into a
// buffer first so a template error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.ErrorContext(req.Context(), "unknown page", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.ErrorContext(req.Context(), "failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
