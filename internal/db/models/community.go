package models

import "time"

// Community is a managed building or residential complex. Every other
// record in the system hangs off exactly one community.
type Community struct {
	ID        string `gorm:"primaryKey"` // UUID
	Name      string `gorm:"not null"`
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
