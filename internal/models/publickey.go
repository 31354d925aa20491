package models

import "time"

// PublicKey is a key-directory entry: the public half of a user's local
// key material, published so peers can derive a shared message key. The
// directory is unauthenticated; see the encryption package doc.
type PublicKey struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Key       string    `gorm:"type:text;not null" json:"key"` // hex-encoded
	UpdatedAt time.Time `json:"updated_at"`
}
