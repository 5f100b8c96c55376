package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"github.com/acme/storefront/internal/auth"
)

// Layout carries the data every storefront page needs for the shared chrome
type Layout struct {
	User *auth.User
}

// parsePage parses the shared layout and partials together with one page
func parsePage(templatesDir, page string) (*template.Template, error) {
	return template.ParseFiles(
		filepath.Join(templatesDir, "base.html"),
		filepath.Join(templatesDir, "partials", "nav.html"),
		filepath.Join(templatesDir, "partials", "product_card.html"),
		filepath.Join(templatesDir, page),
	)
}

// render executes the layout into a buffer so a failing template never
// leaves a half-written page behind a 200 status.
func render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
