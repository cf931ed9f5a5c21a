package models

import "time"

// Activity is an append-only audit entry for a community: syncs run,
// imports applied, messages sent.
type Activity struct {
	ID          string `gorm:"primaryKey"` // UUID
	CommunityID string `gorm:"index;not null"`
	Kind        string `gorm:"not null"` // e.g., "sync", "import", "send"
	Description string
	CreatedAt   time.Time
}
