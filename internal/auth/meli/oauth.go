package meli

import (
	"errors"

	"golang.org/x/oauth2"
)

// TokenURL is the Mercado Libre OAuth2 token endpoint, shared by every
// country site.
const TokenURL = "https://api.mercadolibre.com/oauth/token"

// DefaultAuthURL is the global authorization page, used when a site has
// no country-specific auth domain configured.
const DefaultAuthURL = "https://auth.mercadolibre.com/authorization"

// ErrCredentialsMissing means the application's client credentials are
// not configured; no OAuth operation can proceed until they are.
var ErrCredentialsMissing = errors.New("meli: client credentials are not configured")

// Credentials holds the application's Mercado Libre API credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Configured reports whether all three credential fields are present.
func (c Credentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// OAuthConfig returns the OAuth2 config for Mercado Libre. Mercado
// Libre expects client credentials in the POST body, not basic auth.
func OAuthConfig(creds Credentials, authURL string) *oauth2.Config {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
