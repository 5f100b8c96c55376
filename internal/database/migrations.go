package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema creates the catalog and identity tables
const Schema = `
	CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		short_description VARCHAR(512) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12, 2) NOT NULL,
		currency VARCHAR(3) NOT NULL,
		image_url VARCHAR(2048) NOT NULL DEFAULT '',
		image_alt VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(64) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Migrate applies Schema to db
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
