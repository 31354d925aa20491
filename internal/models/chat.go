package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Chat is a conversation scoping participants and messages. A chat is
// either one-on-one (exactly two participants, no admin) or a group
// (three or more at creation, exactly one admin while active). IsGroup is
// immutable after creation.
type Chat struct {
	ID      string `gorm:"primaryKey" json:"id"`
	IsGroup bool   `json:"is_group"`

	// ParticipantIDs is the ordered list of member user IDs, unique.
	ParticipantIDs pq.StringArray `gorm:"type:text[]" json:"participant_ids"`

	// AdminID is set only for group chats: the single participant allowed
	// to mutate membership and metadata.
	AdminID string `gorm:"type:text" json:"admin_id,omitempty"`

	ChatName    string `gorm:"type:text" json:"chat_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// IsActive turns false when the last member leaves a group. Chats are
	// deactivated, never hard-deleted.
	IsActive bool `json:"is_active"`

	// LatestMessageID is an advisory pointer, last-write-wins. The
	// authoritative ordering is created_at plus insertion order.
	LatestMessageID string `gorm:"type:text" json:"latest_message_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasParticipant reports whether userID is a current member of the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// WithoutParticipant returns the participant list with userID removed,
// preserving order.
func (c *Chat) WithoutParticipant(userID string) pq.StringArray {
	out := make(pq.StringArray, 0, len(c.ParticipantIDs))
	for _, id := range c.ParticipantIDs {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
