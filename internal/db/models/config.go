package models

import "time"

// Config is a key/value row for server-level settings (API key, flags)
type Config struct {
	Key       string `gorm:"primaryKey"` // Config key name
	Value     string // Config value
	CreatedAt time.Time
	UpdatedAt time.Time
}
