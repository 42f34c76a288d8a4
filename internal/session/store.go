package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pysugar/meli-eco-nexus/internal/db/models"
	"gorm.io/gorm"
)

// ErrNoSession means no credentials are stored for the session key.
var ErrNoSession = errors.New("session: no credentials stored")

// Store persists per-session OAuth credentials. Implementations must
// treat a record as all-or-nothing: Get never returns a partial record
// and Put refuses to write one.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Put(ctx context.Context, rec *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// GormStore keeps credential records in the application database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a session store backed by the given database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get loads the credential record for a session. Rows missing the
// access token or expiry are reported as ErrNoSession rather than
// returned half-populated.
func (s *GormStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var rec models.Session
	err := s.db.WithContext(ctx).First(&rec, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: load credentials: %w", err)
	}
	if rec.AccessToken == "" || rec.ExpiresAt.IsZero() {
		return nil, ErrNoSession
	}
	return &rec, nil
}

// Put upserts the credential record for rec.ID.
func (s *GormStore) Put(ctx context.Context, rec *models.Session) error {
	if rec.ID == "" || rec.AccessToken == "" || rec.ExpiresAt.IsZero() {
		return errors.New("session: refusing to store partial credentials")
	}
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("session: save credentials: %w", err)
	}
	return nil
}

// Delete removes the credential record for a session. Deleting an
// absent record is not an error.
func (s *GormStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("session: delete credentials: %w", err)
	}
	return nil
}
