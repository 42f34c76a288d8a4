package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/pysugar/meli-eco-nexus/internal/auth/meli"
	"github.com/pysugar/meli-eco-nexus/internal/marketplace"
)

// LoginHandler starts the OAuth2 authorization-code flow: it builds the
// Mercado Libre authorization URL for the configured site with a fresh
// CSRF state value and redirects the browser there.
func LoginHandler(creds meli.Credentials, siteID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !creds.Configured() {
			writeError(w, http.StatusServiceUnavailable, "configuration_error",
				"Mercado Libre API credentials are not configured on the server")
			return
		}

		authURL := meli.DefaultAuthURL
		if site, ok := marketplace.LookupSite(siteID); ok {
			authURL = site.AuthURL
		}

		state := newStateToken()
		http.SetCookie(w, &http.Cookie{
			Name:     StateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		url := meli.OAuthConfig(creds, authURL).AuthCodeURL(state)
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}

func newStateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
