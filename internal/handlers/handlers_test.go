package handlers

import (
	"context"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/services"
)

const templatesDir = "../../templates"

// MockCatalogService is a mock implementation of services.CatalogService for testing
type MockCatalogService struct {
	ListProductsFunc   func(context.Context) ([]models.Product, error)
	GetProductFunc     func(context.Context, string) (*models.Product, error)
	ImportProductsFunc func(context.Context, []models.Product) (services.ImportResult, error)
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, services.ErrProductNotFound
}

func (m *MockCatalogService) ImportProducts(ctx context.Context, products []models.Product) (services.ImportResult, error) {
	if m.ImportProductsFunc != nil {
		return m.ImportProductsFunc(ctx, products)
	}
	return services.ImportResult{Imported: len(products)}, nil
}

// MockOIDCClient is a mock implementation of auth.OIDCClient for testing
type MockOIDCClient struct {
	AuthCodeURLFunc func(string) string
	ExchangeFunc    func(context.Context, string) (*auth.Claims, error)
}

func (m *MockOIDCClient) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://auth.example.com/oauth2/authorize?state=" + state
}

func (m *MockOIDCClient) Exchange(ctx context.Context, code string) (*auth.Claims, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return &auth.Claims{Subject: "user-1", Username: "shopper", Name: "Sam Shopper"}, nil
}
