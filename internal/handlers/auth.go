package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/telemetry"
	"github.com/google/uuid"
)

const stateCookieMaxAge = 10 * time.Minute

// AuthHandler drives the relying party side of the login flow
type AuthHandler struct {
	client        auth.OIDCClient
	sessions      auth.SessionStore
	sessionTTL    time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies should be true
// whenever the storefront is served over HTTPS.
func NewAuthHandler(client auth.OIDCClient, sessions auth.SessionStore, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		client:        client,
		sessions:      sessions,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// Login handles GET /login by redirecting to the authentication origin
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	telemetry.StorefrontLogin(telemetry.OutcomeStarted)
	http.Redirect(w, r, h.client.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /callback after the authentication origin redirects back
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	auth.ClearCookie(w, auth.StateCookieName)

	if providerErr := query.Get("error"); providerErr != "" {
		log.Printf("Authentication origin returned error: %s (%s)", providerErr, query.Get("error_description"))
		telemetry.StorefrontLogin(telemetry.OutcomeFailed)
		http.Error(w, "Login failed", http.StatusUnauthorized)
		return
	}

	stateCookie, err := r.Cookie(auth.StateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		log.Printf("Rejecting callback: %v", auth.ErrInvalidState)
		telemetry.StorefrontLogin(telemetry.OutcomeFailed)
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		telemetry.StorefrontLogin(telemetry.OutcomeFailed)
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	claims, err := h.client.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("Error exchanging authorization code: %v", err)
		telemetry.StorefrontLogin(telemetry.OutcomeFailed)
		status := http.StatusBadGateway
		if errors.Is(err, auth.ErrCodeExchangeFailed) {
			status = http.StatusUnauthorized
		}
		http.Error(w, "Login failed", status)
		return
	}

	session, err := h.sessions.Create(r.Context(), auth.UserFromClaims(claims))
	if err != nil {
		log.Printf("Error creating session: %v", err)
		telemetry.StorefrontLogin(telemetry.OutcomeFailed)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Printf("User logged in - Subject: %s, Username: %s", session.User.Subject, session.User.Username)
	telemetry.StorefrontLogin(telemetry.OutcomeSucceeded)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles POST /logout from the account menu's confirmation control
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("Error deleting session: %v", err)
		}
	}
	auth.ClearCookie(w, auth.SessionCookieName)

	telemetry.StorefrontLogin(telemetry.OutcomeLoggedOut)
	http.Redirect(w, r, "/", http.StatusFound)
}
