package storage

import (
	"errors"
	"log"

	"chatware/backend/internal/models"

	"gorm.io/gorm"
)

// CreateChat inserts a new chat row.
func (s *Service) CreateChat(chat *models.Chat) error {
	if err := s.DB.Create(chat).Error; err != nil {
		log.Printf("ERROR: Failed to create chat: %v", err)
		return err
	}
	return nil
}

// SaveChat persists the full chat record (membership, admin, metadata).
func (s *Service) SaveChat(chat *models.Chat) error {
	return s.DB.Save(chat).Error
}

func (s *Service) GetChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get chat %s: %v", id, err)
		return nil, err
	}
	return &chat, nil
}

// GetChatsForUser returns the active chats the user participates in,
// most recently updated first.
func (s *Service) GetChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Where("is_active = ?", true).
		Where("participant_ids @> ARRAY[?]::text[]", userID).
		Order("updated_at desc").
		Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list chats for user %s: %v", userID, err)
		return nil, err
	}
	return chats, nil
}

// FindDirectChat looks up the one-on-one chat between two users.
func (s *Service) FindDirectChat(userA, userB string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("is_group = ?", false).
		Where("participant_ids @> ARRAY[?,?]::text[]", userA, userB).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// UpdateLatestMessage moves the advisory latest-message pointer.
// Last-write-wins on purpose: concurrent submits are not serialized and
// the authoritative order is created_at plus insertion order.
func (s *Service) UpdateLatestMessage(chatID, messageID string) error {
	return s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("latest_message_id", messageID).Error
}
