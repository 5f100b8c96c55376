package config

import (
	"fmt"
	"os"
	"strings"
)

// ServerConfig holds storefront server configuration
type ServerConfig struct {
	Port         string
	BaseURL      string
	TemplatesDir string
	StaticDir    string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig() ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	baseURL := strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	templatesDir := os.Getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}

	return ServerConfig{
		Port:         port,
		BaseURL:      baseURL,
		TemplatesDir: templatesDir,
		StaticDir:    staticDir,
	}
}
