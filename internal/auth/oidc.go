// Package auth implements the storefront side of the login flow: an OpenID
// Connect relying party and the sessions it creates.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/acme/storefront/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Flow errors
var (
	ErrInvalidState       = errors.New("invalid state parameter")
	ErrCodeExchangeFailed = errors.New("code exchange failed")
)

// Claims contains the ID token claims the storefront cares about
type Claims struct {
	Subject  string
	Email    string
	Username string
	Name     string
}

// OIDCClient is the relying party's view of the external authentication origin
type OIDCClient interface {
	// AuthCodeURL returns the authorization endpoint URL carrying state
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for verified ID token claims
	Exchange(ctx context.Context, code string) (*Claims, error)
}

// ProviderClient implements OIDCClient against a discovered provider
type ProviderClient struct {
	provider    *oidc.Provider
	verifier    *oidc.IDTokenVerifier
	oauthConfig *oauth2.Config
}

// NewOIDCClient discovers the provider at cfg.IssuerURL and prepares the code flow
func NewOIDCClient(ctx context.Context, cfg *config.OIDCConfig) (*ProviderClient, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &ProviderClient{
		provider:    provider,
		verifier:    verifier,
		oauthConfig: oauthConfig,
	}, nil
}

// AuthCodeURL returns the provider's authorization URL for state
func (c *ProviderClient) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// Exchange performs the token request and verifies the returned ID token
func (c *ProviderClient) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing id_token in token response", ErrCodeExchangeFailed)
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id_token verification failed: %v", ErrCodeExchangeFailed, err)
	}

	var claims struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrCodeExchangeFailed, err)
	}

	return &Claims{
		Subject:  idToken.Subject,
		Email:    claims.Email,
		Username: claims.PreferredUsername,
		Name:     claims.Name,
	}, nil
}
