package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the session ID.
const CookieName = "eco_session"

type contextKey struct{}

// Middleware ensures every request carries a session ID: it reads the
// session cookie, minting and setting a new UUID when absent, and puts
// the ID on the request context for handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			id = c.Value
		} else {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), contextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the session ID placed by Middleware, or "" when
// the request did not pass through it.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
