// Package identity is the authentication origin the storefront redirects to:
// a small OpenID Connect provider with a username/password login form.
package identity

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/services"
	"github.com/acme/storefront/internal/telemetry"
)

// Login form messages
const (
	msgInvalidCredentials = "Invalid username or password."
	msgRateLimited        = "Too many sign-in attempts. Try again shortly."
)

// UserAuthenticator checks a username and password
type UserAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Server serves the discovery, authorization and token endpoints
type Server struct {
	cfg     *config.IdentityConfig
	users   UserAuthenticator
	signer  *Signer
	codes   *CodeStore
	limiter *LoginLimiter
	login   *template.Template
}

// LoginData represents the data passed to the login template
type LoginData struct {
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
	Nonce       string
	Username    string
	Error       string
}

type authorizeRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	Scope        string
	State        string
	Nonce        string
}

// NewServer creates an identity server signing with key
func NewServer(cfg *config.IdentityConfig, users UserAuthenticator, key *rsa.PrivateKey) (*Server, error) {
	signer, err := NewSigner(key, cfg.Issuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFiles(filepath.Join(cfg.TemplatesDir, "identity", "login.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse login template: %w", err)
	}

	return &Server{
		cfg:     cfg,
		users:   users,
		signer:  signer,
		codes:   NewCodeStore(cfg.CodeTTL),
		limiter: NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst, 10*time.Minute),
		login:   tmpl,
	}, nil
}

// Close releases background resources
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler returns the routed identity endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /.well-known/openid-configuration", telemetry.Middleware("discovery", http.HandlerFunc(s.HandleDiscovery)))
	mux.Handle("GET /oauth2/jwks", telemetry.Middleware("jwks", http.HandlerFunc(s.HandleJWKS)))
	mux.Handle("GET /oauth2/authorize", telemetry.Middleware("authorize", http.HandlerFunc(s.HandleAuthorize)))
	mux.Handle("POST /oauth2/authorize", telemetry.Middleware("authorize_submit", http.HandlerFunc(s.HandleLogin)))
	mux.Handle("POST /oauth2/token", telemetry.Middleware("token", http.HandlerFunc(s.HandleToken)))
	mux.Handle("GET /metrics", telemetry.Handler())
	return mux
}

// HandleDiscovery serves GET /.well-known/openid-configuration
func (s *Server) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	issuer := s.cfg.Issuer
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                issuer,
		"authorization_endpoint":                issuer + "/oauth2/authorize",
		"token_endpoint":                        issuer + "/oauth2/token",
		"jwks_uri":                              issuer + "/oauth2/jwks",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"scopes_supported":                      []string{"openid", "profile", "email"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_basic", "client_secret_post"},
		"claims_supported":                      []string{"sub", "iss", "aud", "exp", "iat", "nonce", "preferred_username", "name"},
	})
}

// HandleJWKS serves GET /oauth2/jwks
func (s *Server) HandleJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "max-age=3600")
	writeJSON(w, http.StatusOK, s.signer.JWKS())
}

// HandleAuthorize serves GET /oauth2/authorize by showing the login form
func (s *Server) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	req, ok := s.validateAuthorize(w, r, r.URL.Query())
	if !ok {
		return
	}
	s.renderLogin(w, http.StatusOK, req, "", "")
}

// HandleLogin serves POST /oauth2/authorize with the submitted credentials
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req, ok := s.validateAuthorize(w, r, r.PostForm)
	if !ok {
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	if !s.limiter.Allow(clientIP(r)) {
		log.Printf("Login rate limited - IP: %s", clientIP(r))
		telemetry.IdentityLogin(telemetry.OutcomeRateLimited)
		s.renderLogin(w, http.StatusTooManyRequests, req, username, msgRateLimited)
		return
	}

	user, err := s.users.Authenticate(r.Context(), username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Printf("Invalid credentials for username: %q", username)
		telemetry.IdentityLogin(telemetry.OutcomeInvalidCredentials)
		s.renderLogin(w, http.StatusUnauthorized, req, username, msgInvalidCredentials)
		return
	}
	if err != nil {
		log.Printf("Error authenticating user: %v", err)
		telemetry.IdentityLogin(telemetry.OutcomeFailed)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := s.codes.Issue(Grant{
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Scope:       req.Scope,
		Nonce:       req.Nonce,
	})

	log.Printf("User authenticated - Username: %s, Client: %s", user.Username, req.ClientID)
	telemetry.IdentityLogin(telemetry.OutcomeSucceeded)
	redirectWithParams(w, r, req.RedirectURI, url.Values{"code": {code}, "state": {req.State}})
}

// HandleToken serves POST /oauth2/token for the authorization_code grant
func (s *Server) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request")
		return
	}

	clientID := r.PostForm.Get("client_id")
	clientSecret := r.PostForm.Get("client_secret")
	if user, pass, ok := r.BasicAuth(); ok {
		clientID, clientSecret = basicCredential(user), basicCredential(pass)
	}

	if !s.authenticateClient(clientID, clientSecret) {
		telemetry.IdentityToken("invalid_client")
		w.Header().Set("WWW-Authenticate", `Basic realm="identity"`)
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
		return
	}

	if grantType := r.PostForm.Get("grant_type"); grantType != "authorization_code" {
		telemetry.IdentityToken("unsupported_grant_type")
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported")
		return
	}

	grant, err := s.codes.Redeem(r.PostForm.Get("code"))
	if err != nil {
		telemetry.IdentityToken("invalid_grant")
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", err.Error())
		return
	}
	if grant.ClientID != clientID || grant.RedirectURI != r.PostForm.Get("redirect_uri") {
		telemetry.IdentityToken("invalid_grant")
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "Code was not issued to this client or redirect_uri")
		return
	}

	user := &models.User{ID: grant.UserID, Username: grant.Username, DisplayName: grant.DisplayName}

	idToken, err := s.signer.IDToken(user, clientID, grant.Nonce)
	if err != nil {
		log.Printf("Error signing ID token: %v", err)
		writeTokenError(w, http.StatusInternalServerError, "server_error", "Failed to issue tokens")
		return
	}
	accessToken, err := s.signer.AccessToken(user, clientID, grant.Scope)
	if err != nil {
		log.Printf("Error signing access token: %v", err)
		writeTokenError(w, http.StatusInternalServerError, "server_error", "Failed to issue tokens")
		return
	}

	telemetry.IdentityToken(telemetry.OutcomeSucceeded)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(s.signer.TTL().Seconds()),
		"id_token":     idToken,
		"scope":        grant.Scope,
	})
}

// validateAuthorize checks an authorization request. Client and redirect URI
// problems are shown to the user; anything else is reported back to the client.
func (s *Server) validateAuthorize(w http.ResponseWriter, r *http.Request, params url.Values) (*authorizeRequest, bool) {
	req := &authorizeRequest{
		ClientID:     params.Get("client_id"),
		RedirectURI:  params.Get("redirect_uri"),
		ResponseType: params.Get("response_type"),
		Scope:        params.Get("scope"),
		State:        params.Get("state"),
		Nonce:        params.Get("nonce"),
	}

	if req.ClientID != s.cfg.ClientID {
		http.Error(w, "Unknown client", http.StatusBadRequest)
		return nil, false
	}
	if !slices.Contains(s.cfg.RedirectURIs, req.RedirectURI) {
		http.Error(w, "Unregistered redirect_uri", http.StatusBadRequest)
		return nil, false
	}

	errParams := url.Values{"state": {req.State}}
	if req.ResponseType != "code" {
		errParams.Set("error", "unsupported_response_type")
		redirectWithParams(w, r, req.RedirectURI, errParams)
		return nil, false
	}
	if !slices.Contains(strings.Fields(req.Scope), "openid") {
		errParams.Set("error", "invalid_scope")
		errParams.Set("error_description", "scope must include openid")
		redirectWithParams(w, r, req.RedirectURI, errParams)
		return nil, false
	}

	return req, true
}

func (s *Server) authenticateClient(clientID, clientSecret string) bool {
	idMatch := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.cfg.ClientID)) == 1
	secretMatch := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.cfg.ClientSecret)) == 1
	return idMatch && secretMatch
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, req *authorizeRequest, username, message string) {
	var buf bytes.Buffer
	err := s.login.Execute(&buf, LoginData{
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		State:       req.State,
		Nonce:       req.Nonce,
		Username:    username,
		Error:       message,
	})
	if err != nil {
		log.Printf("Error rendering login template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// basicCredential undoes the form encoding RFC 6749 applies to Basic credentials
func basicCredential(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

func redirectWithParams(w http.ResponseWriter, r *http.Request, redirectURI string, params url.Values) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		http.Error(w, "Invalid redirect_uri", http.StatusBadRequest)
		return
	}

	q := target.Query()
	for key, values := range params {
		if len(values) > 0 && values[0] != "" {
			q.Set(key, values[0])
		}
	}
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func writeTokenError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
