package models

import (
	"time"
)

// Account providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Account is an administrator allowed through the login gate
type Account struct {
	ID           string    `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" db:"email" gorm:"type:varchar(320);uniqueIndex;not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:varchar(255)"`
	Provider     string    `json:"provider" db:"provider" gorm:"type:varchar(16);not null;default:password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// TableName sets the storage table name
func (Account) TableName() string { return "accounts" }
