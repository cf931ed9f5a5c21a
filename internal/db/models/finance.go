package models

import "time"

// Finance period statuses.
const (
	PeriodOpen   = "open"
	PeriodClosed = "closed"
)

// FinancePeriod is one billing month for a community, opened explicitly
// by an operator. TotalBilled is overwritten by each charge import.
type FinancePeriod struct {
	ID            string `gorm:"primaryKey"` // UUID
	CommunityID   string `gorm:"uniqueIndex:idx_community_period;not null"`
	Month         int    `gorm:"uniqueIndex:idx_community_period;not null"`
	Year          int    `gorm:"uniqueIndex:idx_community_period;not null"`
	Status        string `gorm:"default:open"`
	TotalBilled   float64
	TotalExpenses float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChargeDetail is one billed concept for one unit in one period.
// (period_id, unit_id, concept_name) is the natural key; re-importing a
// spreadsheet updates amounts in place instead of appending duplicates.
type ChargeDetail struct {
	ID           string `gorm:"primaryKey"` // UUID
	PeriodID     string `gorm:"uniqueIndex:idx_period_unit_concept;not null"`
	UnitID       string `gorm:"uniqueIndex:idx_period_unit_concept;not null"`
	ConceptName  string `gorm:"uniqueIndex:idx_period_unit_concept;not null"`
	Amount       float64
	SourceColumn string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
