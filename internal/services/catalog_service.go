package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/repository"
)

// ErrProductNotFound is returned when a product ID does not resolve
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpsertProduct(ctx context.Context, p *models.Product) error
}

// CatalogService handles catalog reads and imports
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ImportProducts(ctx context.Context, products []models.Product) (ImportResult, error)
}

// ImportResult summarizes an import run
type ImportResult struct {
	Imported int
	Skipped  int
}

// CatalogServiceImpl implements CatalogService
type CatalogServiceImpl struct {
	productRepo ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo ProductRepository) CatalogService {
	return &CatalogServiceImpl{
		productRepo: productRepo,
	}
}

// ListProducts returns the catalog
func (s *CatalogServiceImpl) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product, mapping a missing row to ErrProductNotFound
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ImportProducts validates and upserts each product. Invalid records are
// skipped and counted; a repository failure aborts the import.
func (s *CatalogServiceImpl) ImportProducts(ctx context.Context, products []models.Product) (ImportResult, error) {
	var result ImportResult

	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			log.Printf("Skipping product %q: %v", p.ID, err)
			result.Skipped++
			continue
		}

		if err := s.productRepo.UpsertProduct(ctx, &p); err != nil {
			return result, fmt.Errorf("failed to import product %s: %w", p.ID, err)
		}
		result.Imported++
	}

	log.Printf("Catalog import finished - imported: %d, skipped: %d", result.Imported, result.Skipped)
	return result, nil
}
