// Package pipeline implements the message delivery path: validate,
// persist, advance the chat's advisory pointer, fan out to the room, and
// track read state. Failures surface with the apperr taxonomy; fan-out
// failures are logged only, since delivery is best-effort.
package pipeline

import (
	"log"
	"strings"

	"chatware/backend/internal/apperr"
	"chatware/backend/internal/models"
	"chatware/backend/internal/storage"
)

// Attachment is the reference a non-text message carries instead of
// (or alongside) content.
type Attachment struct {
	URL  string
	Name string
}

// Service handles the message lifecycle for all chats.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new message pipeline.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Submit validates and persists a new message, moves the chat's
// latest-message pointer (last-write-wins, advisory only), and broadcasts
// message-received to the chat room excluding the sender. The returned
// message is the stored record with the sender resolved.
//
// Encrypted submissions pass ciphertext in content and the IV alongside;
// the pipeline treats both as opaque.
func (s *Service) Submit(senderID, chatID, content, iv, msgType string, attachment *Attachment) (*models.Message, error) {
	chat, err := s.Storage.GetChatByID(chatID)
	if err == storage.ErrNotFound {
		return nil, apperr.NotFound("chat not found")
	}
	if err != nil {
		return nil, err
	}
	if !chat.IsActive {
		return nil, apperr.Validation("chat inactive")
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperr.Forbidden("sender is not a member of this chat")
	}

	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if msgType == models.MessageTypeText && strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("message content is required")
	}
	if msgType != models.MessageTypeText && attachment == nil {
		return nil, apperr.Validation("attachment is required for non-text messages")
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		IV:       iv,
		Type:     msgType,
		ReadBy:   nil, // nobody has read a message at creation
	}
	if attachment != nil {
		msg.AttachmentURL = attachment.URL
		msg.AttachmentName = attachment.Name
	}

	if err := s.Storage.CreateMessage(msg); err != nil {
		return nil, err
	}

	if err := s.Storage.UpdateLatestMessage(chatID, msg.ID); err != nil {
		// Advisory pointer only; the message itself is already stored.
		log.Printf("ERROR: Failed to update latest message for chat %s: %v", chatID, err)
	}

	s.resolveSender(msg)

	if err := s.Storage.PublishEvent(models.Event{
		Type:          models.EventMessageReceived,
		ChatID:        chatID,
		Message:       msg,
		ExcludeUserID: senderID,
	}); err != nil {
		log.Printf("ERROR: Failed to broadcast message %s: %v", msg.ID, err)
	}

	return msg, nil
}

// Fetch returns the chat's non-deleted messages ordered by creation time
// ascending. As a side effect, every returned message from another
// sender is marked read by the requester. The marking races with
// concurrent submits by design: a message that lands mid-fetch may stay
// unread until the next fetch.
func (s *Service) Fetch(chatID, requesterID string) ([]models.Message, error) {
	chat, err := s.Storage.GetChatByID(chatID)
	if err == storage.ErrNotFound {
		return nil, apperr.NotFound("chat not found")
	}
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(requesterID) {
		return nil, apperr.Forbidden("you are not a member of this chat")
	}

	msgs, err := s.Storage.GetChatMessages(chatID)
	if err != nil {
		return nil, err
	}

	if err := s.Storage.MarkChatRead(chatID, requesterID); err != nil {
		log.Printf("ERROR: Failed to mark chat %s read for %s: %v", chatID, requesterID, err)
	}

	for i := range msgs {
		s.resolveSender(&msgs[i])
	}
	return msgs, nil
}

// SoftDelete redacts a message in place: placeholder content, cleared
// attachment fields, deleted flag set. The row is retained. Only the
// original sender may delete. No live broadcast is issued; other
// participants see the deletion on their next fetch.
func (s *Service) SoftDelete(messageID, requesterID string) error {
	msg, err := s.Storage.GetMessageByID(messageID)
	if err == storage.ErrNotFound {
		return apperr.NotFound("message not found")
	}
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return apperr.Forbidden("you can only delete your own messages")
	}

	msg.Redact()
	return s.Storage.SaveMessage(msg)
}

// ToggleReaction flips the (userID, emoji) pair on a message: an existing
// pair is removed, a missing one appended. At most one entry per pair
// ever exists. Returns the updated message.
func (s *Service) ToggleReaction(messageID, userID, emoji string) (*models.Message, error) {
	if emoji == "" {
		return nil, apperr.Validation("emoji is required")
	}

	msg, err := s.Storage.GetMessageByID(messageID)
	if err == storage.ErrNotFound {
		return nil, apperr.NotFound("message not found")
	}
	if err != nil {
		return nil, err
	}

	msg.ToggleReaction(userID, emoji)
	if err := s.Storage.SaveMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) resolveSender(msg *models.Message) {
	sender, err := s.Storage.GetUserByID(msg.SenderID)
	if err != nil {
		// Resolution is cosmetic; the id is still on the record.
		return
	}
	msg.Sender = sender
}
