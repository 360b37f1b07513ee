package models

import (
	"time"
)

// MaxLogEntries caps the activity log listing
const MaxLogEntries = 100

// Activity actions written by the console
const (
	ActionInvite       = "invite"
	ActionStatusPrefix = "status:"
	ActionRolePrefix   = "role:"
)

// LogEntry records one administrative action
type LogEntry struct {
	ID        string    `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" db:"email" gorm:"type:varchar(320)"`
	Action    string    `json:"action" db:"action" gorm:"type:varchar(64)"`
	Timestamp time.Time `json:"timestamp" db:"timestamp" gorm:"index"`
}

// TableName sets the storage table name
func (LogEntry) TableName() string { return "logs" }
