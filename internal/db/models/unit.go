package models

import "time"

// Unit is a billable dwelling inside a community, unique by unit number.
// Units come into existence either with a contact or through import-time
// reconciliation when a spreadsheet references an unknown label.
type Unit struct {
	ID          string `gorm:"primaryKey"` // UUID
	CommunityID string `gorm:"uniqueIndex:idx_community_unit;not null"`
	UnitNumber  string `gorm:"uniqueIndex:idx_community_unit;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
