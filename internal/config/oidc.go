package config

import (
	"fmt"
	"strings"
)

// OIDCConfig holds the storefront's relying party settings for the
// external authentication origin.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LoadOIDCConfig loads OpenID Connect client configuration from environment variables.
// baseURL is used to derive the callback URL when OIDC_REDIRECT_URL is unset.
func LoadOIDCConfig(getenv func(string) string, baseURL string) (*OIDCConfig, error) {
	config := &OIDCConfig{
		IssuerURL:    strings.TrimRight(getenv("AUTH_ORIGIN"), "/"),
		ClientID:     getenv("OIDC_CLIENT_ID"),
		ClientSecret: getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  getenv("OIDC_REDIRECT_URL"),
	}

	// Validate required fields
	if config.IssuerURL == "" {
		return nil, fmt.Errorf("AUTH_ORIGIN is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("OIDC_CLIENT_ID is required")
	}
	if config.ClientSecret == "" {
		return nil, fmt.Errorf("OIDC_CLIENT_SECRET is required")
	}
	if config.RedirectURL == "" {
		config.RedirectURL = strings.TrimRight(baseURL, "/") + "/callback"
	}

	return config, nil
}
