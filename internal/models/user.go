package models

import (
	"time"
)

// User statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRevoked  = "revoked"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// FilterAll disables a status or role filter.
const FilterAll = "all"

// ValidStatuses defines allowed user statuses
var ValidStatuses = map[string]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRevoked:  true,
}

// ValidRoles defines allowed user roles
var ValidRoles = map[string]bool{
	RoleAdmin:  true,
	RoleEditor: true,
	RoleViewer: true,
}

// User is a normalised invited user as shown by the console.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	InvitedAt time.Time `json:"invitedAt"`
}

// EffectiveRole returns the role with the viewer default applied.
func (u User) EffectiveRole() string {
	if u.Role == "" {
		return RoleViewer
	}
	return u.Role
}

// UserDocument is a user as held by the store. Role and InvitedAt may be absent.
type UserDocument struct {
	ID        string     `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string     `json:"email" db:"email" gorm:"type:varchar(320);index;not null"`
	Status    string     `json:"status" db:"status" gorm:"type:varchar(16);index;not null;default:pending"`
	Role      string     `json:"role" db:"role" gorm:"type:varchar(16)"`
	InvitedAt *time.Time `json:"invitedAt" db:"invited_at"`
}

// TableName sets the storage table name
func (UserDocument) TableName() string { return "users" }
