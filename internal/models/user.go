package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system. Presence (online/offline) is
// derived from the connection registry and never stored; LastSeen is the
// moment the user's last connection went away.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	DisplayName string `gorm:"type:text;not null" json:"display_name"`
	Email       string `gorm:"uniqueIndex" json:"email"`
	Role        string `gorm:"type:text;default:user" json:"role"` // "user" or "admin"

	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the record
// has no ID yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
