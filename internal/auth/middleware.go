package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}

// Middleware resolves the session cookie and attaches the user to the request
// context. A stale cookie is cleared; store failures degrade to anonymous.
func Middleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrSessionNotFound) {
					log.Printf("Error loading session: %v", err)
				}
				ClearCookie(w, SessionCookieName)
				next.ServeHTTP(w, r)
				return
			}

			user := session.User
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
		})
	}
}

// ClearCookie expires a storefront cookie
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
