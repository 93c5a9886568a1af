package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/unique-meal/member-portal/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "register", "login", "profile", "book_meal", "error"}

// pageData is the view model shared by every page.
type pageData struct {
	Title     string
	Member    *domain.Member
	Flash     string
	Error     string
	Form      map[string]string
	Errors    map[string]any
	Bookings  []domain.MealBooking
	// BookingCount is shown on the profile page.
	BookingCount int
	RequestID    string
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// render writes page with status. Output is buffered so a template failure
// never leaves a half-written 200 behind.
func (rn *renderer) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) error {
	t, ok := rn.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.RequestID == "" {
		data.RequestID = middleware.GetReqID(r.Context())
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
