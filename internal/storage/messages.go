package storage

import (
	"errors"
	"log"

	"chatware/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage inserts a message row. The ID is populated by the
// BeforeCreate hook so the caller can broadcast the stored record.
func (s *Service) CreateMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", msg.ChatID, err)
		return err
	}
	return nil
}

// SaveMessage persists an updated message (redaction, reactions).
func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Save(msg).Error
}

func (s *Service) GetMessageByID(id string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetChatMessages returns the non-deleted messages of a chat ordered by
// creation time ascending.
func (s *Service) GetChatMessages(chatID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("chat_id = ?", chatID).
		Where("deleted = ?", false).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for chat %s: %v", chatID, err)
		return nil, err
	}
	return msgs, nil
}

// MarkChatRead unions userID into the read set of every message in the
// chat sent by someone else. The containment guard makes the update
// atomic and idempotent: rows already containing the user are untouched.
func (s *Service) MarkChatRead(chatID, userID string) error {
	return s.DB.Exec(
		`UPDATE messages
		 SET read_by = array_append(COALESCE(read_by, '{}'), ?)
		 WHERE chat_id = ?
		   AND sender_id <> ?
		   AND NOT (COALESCE(read_by, '{}') @> ARRAY[?]::text[])`,
		userID, chatID, userID, userID,
	).Error
}

// UnreadCount counts non-deleted messages in the chat that were sent by
// someone else and not yet read by the user.
func (s *Service) UnreadCount(chatID, userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Message{}).
		Where("chat_id = ?", chatID).
		Where("sender_id <> ?", userID).
		Where("deleted = ?", false).
		Where("NOT (COALESCE(read_by, '{}') @> ARRAY[?]::text[])", userID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// TotalUnread sums unread counts across every active chat the user
// participates in.
func (s *Service) TotalUnread(userID string) (int64, error) {
	var chatIDs []string
	err := s.DB.Model(&models.Chat{}).
		Where("is_active = ?", true).
		Where("participant_ids @> ARRAY[?]::text[]", userID).
		Pluck("id", &chatIDs).Error
	if err != nil {
		return 0, err
	}
	if len(chatIDs) == 0 {
		return 0, nil
	}

	var n int64
	err = s.DB.Model(&models.Message{}).
		Where("chat_id IN ?", chatIDs).
		Where("sender_id <> ?", userID).
		Where("deleted = ?", false).
		Where("NOT (COALESCE(read_by, '{}') @> ARRAY[?]::text[])", userID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
