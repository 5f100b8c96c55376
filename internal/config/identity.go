package config

import (
	"fmt"
	"strings"
	"time"
)

// IdentityConfig holds configuration for the identity provider
type IdentityConfig struct {
	Port         string
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURIs []string
	SigningKey   string // path to a PEM encoded RSA private key; generated when empty
	TemplatesDir string
	CodeTTL      time.Duration
	TokenTTL     time.Duration
	LoginRate    float64 // login attempts per second per client IP
	LoginBurst   int
}

// LoadIdentityConfig loads identity provider configuration from environment variables
func LoadIdentityConfig(getenv func(string) string) (*IdentityConfig, error) {
	config := &IdentityConfig{
		Port:         getenv("IDENTITY_PORT"),
		Issuer:       strings.TrimRight(getenv("IDENTITY_ISSUER"), "/"),
		ClientID:     getenv("IDENTITY_CLIENT_ID"),
		ClientSecret: getenv("IDENTITY_CLIENT_SECRET"),
		SigningKey:   getenv("IDENTITY_SIGNING_KEY"),
		TemplatesDir: getenv("TEMPLATES_DIR"),
		CodeTTL:      time.Minute,
		TokenTTL:     time.Hour,
		LoginRate:    1,
		LoginBurst:   5,
	}

	for _, uri := range strings.Split(getenv("IDENTITY_REDIRECT_URIS"), ",") {
		if uri = strings.TrimSpace(uri); uri != "" {
			config.RedirectURIs = append(config.RedirectURIs, uri)
		}
	}

	if config.Port == "" {
		config.Port = "9000"
	}
	if config.Issuer == "" {
		config.Issuer = fmt.Sprintf("http://localhost:%s", config.Port)
	}
	if config.TemplatesDir == "" {
		config.TemplatesDir = "templates"
	}

	// Validate required fields
	if config.ClientID == "" {
		return nil, fmt.Errorf("IDENTITY_CLIENT_ID is required")
	}
	if config.ClientSecret == "" {
		return nil, fmt.Errorf("IDENTITY_CLIENT_SECRET is required")
	}
	if len(config.RedirectURIs) == 0 {
		return nil, fmt.Errorf("IDENTITY_REDIRECT_URIS is required")
	}

	return config, nil
}
