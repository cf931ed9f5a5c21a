package models

import "time"

// Integration stores mail-provider OAuth credentials for one community.
// Access and refresh tokens are encrypted at rest; one active row per
// (community, provider) pair, overwritten on reconnect.
type Integration struct {
	ID           string `gorm:"primaryKey"` // UUID
	CommunityID  string `gorm:"uniqueIndex:idx_community_provider;not null"`
	Provider     string `gorm:"uniqueIndex:idx_community_provider;not null"` // e.g., "google"
	Email        string
	AccessToken  string // AES-GCM sealed, base64
	RefreshToken string // AES-GCM sealed, base64; empty when the provider never granted one
	ExpiresAt    time.Time
	Scopes       string // space-separated granted scopes
	// LastSyncedAt is the receive time of the newest message stored by a
	// sync run. Zero means never synced; the next run falls back to the
	// bounded recent window.
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
