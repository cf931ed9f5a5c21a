package models

import "time"

// Task statuses (board columns).
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Task is a work item on a community's board. Position orders tasks
// within their status column.
type Task struct {
	ID          string `gorm:"primaryKey"` // UUID
	CommunityID string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"default:todo"`
	Position    int
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
