package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DeletedPlaceholder replaces the content of a soft-deleted message. The
// row itself is retained in storage.
const DeletedPlaceholder = "This message was deleted"

// Message kinds.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Reaction is a single (user, emoji) pair on a message. Pairs are unique
// per message; reacting twice with the same emoji removes the reaction.
type Reaction struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// ReactionList is stored as a jsonb column.
type ReactionList []Reaction

func (r ReactionList) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *ReactionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("unsupported source type for ReactionList")
	}
}

// Message is a single chat message. Content holds either plaintext or
// ciphertext produced by the client-edge confidentiality layer; when it is
// ciphertext, IV carries the initialization vector used to produce it.
type Message struct {
	ID       string `gorm:"primaryKey" json:"id"`
	ChatID   string `gorm:"type:text;not null;index:idx_chat_msg" json:"chat_id"`
	SenderID string `gorm:"type:text;not null;index:idx_chat_msg" json:"sender_id"`

	Content string `gorm:"type:text" json:"content"`
	IV      string `gorm:"type:text" json:"iv,omitempty"`
	Type    string `gorm:"type:text;not null;default:text" json:"type"`

	AttachmentURL  string `gorm:"type:text" json:"attachment_url,omitempty"`
	AttachmentName string `gorm:"type:text" json:"attachment_name,omitempty"`

	// ReadBy is the set of user IDs that have fetched this message. The
	// sender is never a member of this set.
	ReadBy pq.StringArray `gorm:"type:text[]" json:"read_by"`

	Reactions ReactionList `gorm:"type:jsonb" json:"reactions"`

	Deleted bool `json:"deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Sender is resolved on reads; not a stored column.
	Sender *User `gorm:"-" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// IsReadBy reports whether userID has read the message.
func (m *Message) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleReaction flips the (userID, emoji) pair: present pairs are
// removed, absent pairs appended. Reports whether the pair is present
// after the toggle.
func (m *Message) ToggleReaction(userID, emoji string) bool {
	for i, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return false
		}
	}
	m.Reactions = append(m.Reactions, Reaction{UserID: userID, Emoji: emoji})
	return true
}

// Redact soft-deletes the message in place: placeholder content, cleared
// attachment fields, deleted flag set.
func (m *Message) Redact() {
	m.Content = DeletedPlaceholder
	m.IV = ""
	m.AttachmentURL = ""
	m.AttachmentName = ""
	m.Deleted = true
}
