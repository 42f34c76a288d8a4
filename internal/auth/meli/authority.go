package meli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Credential is one freshly issued token set from the token endpoint.
// RefreshToken is empty when the endpoint omitted it from the response;
// the caller must keep its previously stored value in that case.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// ExchangeError means the authorization-code exchange was rejected.
// The user must restart the login flow.
type ExchangeError struct {
	Status int    // upstream HTTP status, 0 when the request never completed
	Body   string // upstream response body, for diagnostics
	cause  error
}

func (e *ExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("meli: code exchange rejected with HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("meli: code exchange failed: %v", e.cause)
}

func (e *ExchangeError) Unwrap() error { return e.cause }

// RefreshError means the refresh token was rejected or the refresh
// request failed. Terminal for the session: the caller must clear the
// stored credentials and force re-authentication, not retry.
type RefreshError struct {
	Status int
	Body   string
	cause  error
}

func (e *RefreshError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("meli: token refresh rejected with HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("meli: token refresh failed: %v", e.cause)
}

func (e *RefreshError) Unwrap() error { return e.cause }

// Authority wraps the two token-endpoint interactions. It never
// retries: a failed exchange or refresh is reported upward once.
type Authority struct {
	creds      Credentials
	authURL    string
	httpClient *http.Client
}

// NewAuthority creates a token authority client with a bounded request
// timeout.
func NewAuthority(creds Credentials, authURL string, timeout time.Duration) *Authority {
	return &Authority{
		creds:      creds,
		authURL:    authURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewAuthorityWithClient creates a token authority client using the
// given HTTP client.
func NewAuthorityWithClient(creds Credentials, authURL string, client *http.Client) *Authority {
	return &Authority{creds: creds, authURL: authURL, httpClient: client}
}

// ExchangeCode posts the authorization code to the token endpoint and
// returns the resulting credentials.
func (a *Authority) ExchangeCode(ctx context.Context, code string) (*Credential, error) {
	if !a.creds.Configured() {
		return nil, ErrCredentialsMissing
	}
	if strings.TrimSpace(code) == "" {
		return nil, &ExchangeError{cause: errors.New("empty authorization code")}
	}

	cfg := OAuthConfig(a.creds, a.authURL)
	tok, err := cfg.Exchange(a.withClient(ctx), code)
	if err != nil {
		status, body := retrieveDetails(err)
		return nil, &ExchangeError{Status: status, Body: body, cause: err}
	}
	if tok.AccessToken == "" || tok.Expiry.IsZero() {
		return nil, &ExchangeError{cause: errors.New("token response missing access_token or expires_in")}
	}
	return credentialFromToken(tok), nil
}

// Refresh posts grant_type=refresh_token with the stored refresh token
// and returns the renewed credentials. The returned RefreshToken is
// empty unless the endpoint rotated it.
func (a *Authority) Refresh(ctx context.Context, refreshToken string) (*Credential, error) {
	if !a.creds.Configured() {
		return nil, ErrCredentialsMissing
	}
	if refreshToken == "" {
		return nil, &RefreshError{cause: errors.New("no refresh token available")}
	}

	cfg := OAuthConfig(a.creds, a.authURL)
	src := cfg.TokenSource(a.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		status, body := retrieveDetails(err)
		return nil, &RefreshError{Status: status, Body: body, cause: err}
	}
	if tok.AccessToken == "" || tok.Expiry.IsZero() {
		return nil, &RefreshError{cause: errors.New("token response missing access_token or expires_in")}
	}

	cred := credentialFromToken(tok)
	if cred.RefreshToken == refreshToken {
		// Endpoint echoed the same token; report no rotation so the
		// caller's keep-the-old-value rule stays a single code path.
		cred.RefreshToken = ""
	}
	return cred, nil
}

// withClient routes oauth2's internal HTTP calls through our client so
// the configured timeout applies.
func (a *Authority) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func credentialFromToken(tok *oauth2.Token) *Credential {
	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	// Mercado Libre includes the authenticated user's numeric id in the
	// token response.
	switch v := tok.Extra("user_id").(type) {
	case string:
		cred.UserID = v
	case float64:
		cred.UserID = fmt.Sprintf("%.0f", v)
	}
	return cred
}

// retrieveDetails pulls the upstream status and body out of an oauth2
// retrieval error, when there was an HTTP response at all.
func retrieveDetails(err error) (int, string) {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode, strings.TrimSpace(string(rerr.Body))
	}
	return 0, ""
}
