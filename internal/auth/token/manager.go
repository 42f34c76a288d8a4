package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pysugar/meli-eco-nexus/internal/auth/meli"
	"github.com/pysugar/meli-eco-nexus/internal/session"
)

var (
	// ErrNotAuthenticated means the session holds no credentials; the
	// user must go through the login flow.
	ErrNotAuthenticated = errors.New("token: not authenticated")

	// ErrReauthRequired means the refresh token was rejected; the
	// session's credentials have been cleared and the user must log in
	// again.
	ErrReauthRequired = errors.New("token: re-authentication required")
)

// DefaultSkew is the safety margin subtracted from a token's expiry
// before trusting it for an outgoing call.
const DefaultSkew = 60 * time.Second

// Refresher mints new credentials from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*meli.Credential, error)
}

// Manager is the single decision point for "is there a usable access
// token for this session right now". It serializes the check-then-
// refresh sequence per session so overlapping requests from one browser
// trigger at most one refresh.
type Manager struct {
	store     session.Store
	refresher Refresher
	skew      time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a token lifecycle manager. A non-positive skew
// falls back to DefaultSkew.
func NewManager(store session.Store, refresher Refresher, skew time.Duration) *Manager {
	if skew <= 0 {
		skew = DefaultSkew
	}
	return &Manager{
		store:     store,
		refresher: refresher,
		skew:      skew,
		locks:     make(map[string]*sync.Mutex),
	}
}

// EnsureValidToken returns a usable access token for the session,
// refreshing it first when expired. Calling it again while the token is
// valid performs no network call.
func (m *Manager) EnsureValidToken(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNotAuthenticated
	}

	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNoSession) {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}

	if time.Now().Before(rec.ExpiresAt.Add(-m.skew)) {
		return rec.AccessToken, nil
	}

	if rec.RefreshToken == "" {
		// Expired with nothing to refresh: same as logged out.
		if err := m.store.Delete(ctx, sessionID); err != nil {
			log.Printf("⚠️ Failed to clear stale session %s: %v", shortID(sessionID), err)
		}
		return "", ErrNotAuthenticated
	}

	log.Printf("⚠️ Access token for session %s expired, refreshing...", shortID(sessionID))
	cred, err := m.refresher.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		if errors.Is(err, meli.ErrCredentialsMissing) {
			// Server misconfiguration, not a revoked token: keep the
			// stored credentials and surface the configuration error.
			log.Printf("⚠️ Cannot refresh session %s: %v", shortID(sessionID), err)
			return "", err
		}
		log.Printf("❌ Token refresh failed for session %s: %v", shortID(sessionID), err)
		if derr := m.store.Delete(ctx, sessionID); derr != nil {
			log.Printf("⚠️ Failed to clear session %s after refresh failure: %v", shortID(sessionID), derr)
		}
		return "", fmt.Errorf("%w: %v", ErrReauthRequired, err)
	}

	rec.AccessToken = cred.AccessToken
	rec.ExpiresAt = cred.ExpiresAt
	// Persist rotated refresh token if provided; never overwrite the
	// stored one with empty (some refresh responses omit it).
	if cred.RefreshToken != "" && cred.RefreshToken != rec.RefreshToken {
		log.Printf("🔄 Rotating refresh token for session %s", shortID(sessionID))
		rec.RefreshToken = cred.RefreshToken
	}
	if cred.UserID != "" {
		rec.UserID = cred.UserID
	}
	if err := m.store.Put(ctx, rec); err != nil {
		return "", err
	}

	log.Printf("✅ Refreshed token for session %s (expires: %s)", shortID(sessionID), rec.ExpiresAt.Format(time.RFC3339))
	return rec.AccessToken, nil
}

// Forget drops the per-session lock after logout so the map does not
// grow with dead sessions. A lock held by an in-flight refresh is left
// in place, otherwise a new request could mint a second mutex and race
// that refresh.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		return
	}
	if lock.TryLock() {
		lock.Unlock()
		delete(m.locks, sessionID)
	}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
