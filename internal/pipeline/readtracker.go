package pipeline

import (
	"chatware/backend/internal/apperr"
	"chatware/backend/internal/storage"
)

// MarkRead unions the user into the read set of every message in the
// chat sent by someone else. Idempotent: re-marking changes nothing.
// The sender's own messages are never touched, so a sender can never
// appear in the readBy set of their own message.
func (s *Service) MarkRead(chatID, userID string) error {
	chat, err := s.Storage.GetChatByID(chatID)
	if err == storage.ErrNotFound {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return apperr.Forbidden("you are not a member of this chat")
	}
	return s.Storage.MarkChatRead(chatID, userID)
}

// UnreadCount reports the number of non-deleted messages in the chat the
// user has not read, excluding their own. Computed on demand against the
// authoritative read sets; there is no separate counter to drift.
func (s *Service) UnreadCount(chatID, userID string) (int64, error) {
	return s.Storage.UnreadCount(chatID, userID)
}

// TotalUnread sums UnreadCount over every active chat the user is in.
func (s *Service) TotalUnread(userID string) (int64, error) {
	return s.Storage.TotalUnread(userID)
}
