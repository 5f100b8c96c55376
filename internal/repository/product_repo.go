package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/acme/storefront/internal/database"
	"github.com/acme/storefront/internal/models"
)

// ProductRepository handles database operations for catalog products
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a product repository on the shared connection
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		db: database.DB,
	}
}

// NewProductRepositoryWithDB creates a product repository with a specific database connection
func NewProductRepositoryWithDB(db *sql.DB) *ProductRepository {
	return &ProductRepository{
		db: db,
	}
}

const productColumns = `id, name, short_description, description, price, currency,
		       image_url, image_alt, created_at, updated_at`

// ListProducts returns every product ordered by name
func (r *ProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a product by its identifier
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p := &models.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// UpsertProduct inserts a product or replaces the existing one with the same ID
func (r *ProductRepository) UpsertProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, name, short_description, description, price, currency,
		                      image_url, image_alt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			short_description = EXCLUDED.short_description,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			image_alt = EXCLUDED.image_alt,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Name,
		p.ShortDescription,
		p.Description,
		p.Price,
		p.Currency,
		p.ImageURL,
		p.ImageAlt,
		now,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	p.UpdatedAt = now

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.ShortDescription,
		&p.Description,
		&p.Price,
		&p.Currency,
		&p.ImageURL,
		&p.ImageAlt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
