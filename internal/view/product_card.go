// Package view maps domain records to the values templates render.
package view

import (
	"net/url"

	"github.com/acme/storefront/internal/models"
)

// ProductCard is the display model for one catalog tile
type ProductCard struct {
	Href     string
	ImageSrc string
	ImageAlt string
	Name     string
	Price    string
}

// ProductPath returns the detail page route for a product ID
func ProductPath(id string) string {
	return "/product/" + url.PathEscape(id)
}

// NewProductCard builds the card for p. The image alt text is ImageAlt
// when set and the product ID otherwise.
func NewProductCard(p models.Product) ProductCard {
	alt := p.ImageAlt
	if alt == "" {
		alt = p.ID
	}

	return ProductCard{
		Href:     ProductPath(p.ID),
		ImageSrc: p.ImageURL,
		ImageAlt: alt,
		Name:     p.Name,
		Price:    p.DisplayPrice(),
	}
}

// NewProductCards maps a product list in order
func NewProductCards(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewProductCard(p))
	}
	return cards
}
