package models

import "time"

// Communication statuses.
const (
	StatusNew      = "new"
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Communication directions.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Communication is a persisted mail message, inbound or outbound.
// (thread_id, provider_message_id) is the dedup key for synced mail;
// the unique index doubles as the race guard when two syncs overlap.
type Communication struct {
	ID                string `gorm:"primaryKey"` // UUID
	CommunityID       string `gorm:"index;not null"`
	Subject           string
	SenderName        string
	SenderEmail       string
	Body              string
	ReceivedAt        time.Time
	Status            string `gorm:"default:new"`
	ThreadID          string `gorm:"uniqueIndex:idx_thread_provider_msg"`
	ProviderMessageID string `gorm:"uniqueIndex:idx_thread_provider_msg"`
	Direction         string `gorm:"default:incoming"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
