package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/services"
	"github.com/acme/storefront/internal/view"
)

// CatalogHandler renders the product grid on the home page
type CatalogHandler struct {
	template *template.Template
	catalog  services.CatalogService
}

// CatalogData represents the data passed to the catalog template
type CatalogData struct {
	Layout
	Products []view.ProductCard
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(templatesDir string, catalog services.CatalogService) (*CatalogHandler, error) {
	tmpl, err := parsePage(templatesDir, "catalog.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog template: %w", err)
	}

	return &CatalogHandler{
		template: tmpl,
		catalog:  catalog,
	}, nil
}

// ServeHTTP handles the GET / request
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render(w, h.template, http.StatusOK, CatalogData{
		Layout:   Layout{User: auth.UserFromContext(r.Context())},
		Products: view.NewProductCards(products),
	})
}
