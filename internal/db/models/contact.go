package models

import "time"

// Contact is a resident or owner tied to a community, optionally linked
// to the unit they occupy.
type Contact struct {
	ID          string `gorm:"primaryKey"` // UUID
	CommunityID string `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Email       string
	Phone       string
	UnitID      string // empty when the contact has no unit
	Role        string // e.g., "owner", "tenant"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
