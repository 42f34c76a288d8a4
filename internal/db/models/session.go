package models

import "time"

// Session stores the OAuth credentials for one browser session.
// A usable row always carries both AccessToken and ExpiresAt; rows
// missing either are treated as logged out by the session store.
type Session struct {
	ID           string `gorm:"primaryKey"` // session cookie UUID
	UserID       string // Mercado Libre user id, when the token endpoint reported one
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
