package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/services"
	"github.com/acme/storefront/internal/view"
)

// ProductHandler handles the product detail page requests
type ProductHandler struct {
	template *template.Template
	catalog  services.CatalogService
}

// ProductData represents the data passed to the product template
type ProductData struct {
	Layout
	Product          view.ProductCard
	ShortDescription string
	Description      template.HTML
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(templatesDir string, catalog services.CatalogService) (*ProductHandler, error) {
	tmpl, err := parsePage(templatesDir, "product.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse product template: %w", err)
	}

	return &ProductHandler{
		template: tmpl,
		catalog:  catalog,
	}, nil
}

// ServeHTTP handles the GET /product/{id} request
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, services.ErrProductNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error loading product %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render(w, h.template, http.StatusOK, ProductData{
		Layout:           Layout{User: auth.UserFromContext(r.Context())},
		Product:          view.NewProductCard(*product),
		ShortDescription: product.ShortDescription,
		Description:      view.RenderDescription(product.Description),
	})
}
