package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pysugar/meli-eco-nexus/internal/auth/meli"
	"github.com/pysugar/meli-eco-nexus/internal/db/models"
	"github.com/pysugar/meli-eco-nexus/internal/session"
)

// CallbackHandler processes the OAuth2 callback: it validates the CSRF
// state, exchanges the authorization code for tokens and stores them in
// the caller's session.
func CallbackHandler(authority *meli.Authority, store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(StateCookieName)
		if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
			writeError(w, http.StatusBadRequest, "invalid_request_error", "Invalid state token")
			return
		}
		// State is single-use.
		http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1})

		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "invalid_request_error", "Authorization code not received")
			return
		}

		sessionID := session.FromContext(r.Context())
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request_error", "No session")
			return
		}

		cred, err := authority.ExchangeCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, meli.ErrCredentialsMissing) {
				writeError(w, http.StatusServiceUnavailable, "configuration_error", err.Error())
				return
			}
			log.Printf("❌ Code exchange failed for session %s: %v", shortID(sessionID), err)
			writeError(w, http.StatusBadGateway, "upstream_error", "Token exchange failed, please log in again")
			return
		}

		rec := &models.Session{
			ID:           sessionID,
			UserID:       cred.UserID,
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			ExpiresAt:    cred.ExpiresAt,
		}
		if err := store.Put(r.Context(), rec); err != nil {
			log.Printf("⚠️ Failed to save session credentials: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save session")
			return
		}

		log.Printf("✅ Session %s authenticated (user %s)", shortID(sessionID), cred.UserID)
		http.Redirect(w, r, "/products", http.StatusFound)
	}
}
