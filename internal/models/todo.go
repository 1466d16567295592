package models

import "time"

type Priority string

const (
	PriorityImportant Priority = "IMPORTANT"
	PriorityMedium    Priority = "MEDIUM"
	PriorityEasy      Priority = "EASY"
)

// Priorities lists the accepted priority values.
var Priorities = []Priority{PriorityImportant, PriorityMedium, PriorityEasy}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

type Todo struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Text      string    `gorm:"type:varchar(200);not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	DueDate   time.Time `gorm:"type:date;not null" json:"due_date"`
	Priority  Priority  `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
