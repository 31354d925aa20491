// Package chats manages conversation lifecycle: find-or-create access to
// one-on-one chats and the group membership state machine
// (create, add, remove, rename, leave, admin handover, deactivate).
//
// Group transitions on the same chat are serialized with a per-chat
// mutex so the admin invariant (exactly one admin, always a participant)
// holds at every observable state. Distinct chats proceed in parallel.
// One-on-one chats never enter the membership machine.
package chats

import (
	"sort"
	"sync"

	"chatware/backend/internal/apperr"
	"chatware/backend/internal/models"
	"chatware/backend/internal/storage"
)

// Service handles chat access and group membership.
type Service struct {
	Storage storage.Storage

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new chat service.
func NewService(s storage.Storage) *Service {
	return &Service{
		Storage: s,
		locks:   make(map[string]*sync.Mutex),
	}
}

// chatLock returns the mutex serializing transitions for one chat.
func (s *Service) chatLock(chatID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

// AccessDirect returns the one-on-one chat between two users, creating
// it if none exists yet. Calling it again returns the same chat.
func (s *Service) AccessDirect(userID, otherID string) (*models.Chat, error) {
	if otherID == "" || otherID == userID {
		return nil, apperr.Validation("a different user id is required")
	}

	other, err := s.Storage.GetUserByID(otherID)
	if err == storage.ErrNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}

	chat, err := s.Storage.FindDirectChat(userID, otherID)
	if err == nil {
		return chat, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	self, err := s.Storage.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	chat = &models.Chat{
		IsGroup:        false,
		ParticipantIDs: []string{userID, otherID},
		ChatName:       self.DisplayName + ", " + other.DisplayName,
		IsActive:       true,
	}
	if err := s.Storage.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ChatsFor lists the active chats the user participates in, most
// recently updated first.
func (s *Service) ChatsFor(userID string) ([]models.Chat, error) {
	return s.Storage.GetChatsForUser(userID)
}

// CreateGroup creates a group chat. The creator becomes the admin and is
// always a participant. Total membership must be at least three; nothing
// is persisted when validation fails.
func (s *Service) CreateGroup(creatorID, name, description string, memberIDs []string) (*models.Chat, error) {
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}

	seen := map[string]bool{creatorID: true}
	participants := []string{creatorID}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, id)
	}

	if len(participants) < 3 {
		return nil, apperr.Validation("more than 2 users are required to create a group chat")
	}

	chat := &models.Chat{
		IsGroup:        true,
		ParticipantIDs: participants,
		AdminID:        creatorID,
		ChatName:       name,
		Description:    description,
		IsActive:       true,
	}
	if err := s.Storage.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// loadGroup fetches a chat and rejects anything the membership machine
// must not touch: missing chats, one-on-one chats, deactivated groups.
func (s *Service) loadGroup(chatID string) (*models.Chat, error) {
	chat, err := s.Storage.GetChatByID(chatID)
	if err == storage.ErrNotFound {
		return nil, apperr.NotFound("chat not found")
	}
	if err != nil {
		return nil, err
	}
	if !chat.IsGroup {
		return nil, apperr.Validation("this is not a group chat")
	}
	if !chat.IsActive {
		return nil, apperr.Validation("chat inactive")
	}
	return chat, nil
}

// AddMember adds a user to the group. Admin only; duplicates conflict.
func (s *Service) AddMember(chatID, requesterID, userID string) (*models.Chat, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.loadGroup(chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != requesterID {
		return nil, apperr.Forbidden("only the admin can add users to the group")
	}
	if chat.HasParticipant(userID) {
		return nil, apperr.Conflict("user already in the group")
	}

	chat.ParticipantIDs = append(chat.ParticipantIDs, userID)
	if err := s.Storage.SaveChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// RemoveMember removes a current non-admin participant. Admin only.
func (s *Service) RemoveMember(chatID, requesterID, userID string) (*models.Chat, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.loadGroup(chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != requesterID {
		return nil, apperr.Forbidden("only the admin can remove users from the group")
	}
	if userID == chat.AdminID {
		return nil, apperr.Validation("cannot remove the admin from the group")
	}
	if !chat.HasParticipant(userID) {
		return nil, apperr.Validation("user is not in the group")
	}

	chat.ParticipantIDs = chat.WithoutParticipant(userID)
	if err := s.Storage.SaveChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Rename updates the group's name and, when given, its description.
// Admin only.
func (s *Service) Rename(chatID, requesterID, name, description string) (*models.Chat, error) {
	if name == "" {
		return nil, apperr.Validation("chat name is required")
	}

	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.loadGroup(chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != requesterID {
		return nil, apperr.Forbidden("only the admin can update group details")
	}

	chat.ChatName = name
	if description != "" {
		chat.Description = description
	}
	if err := s.Storage.SaveChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Leave removes the requester from the group. A departing admin hands
// the role to the remaining participant with the lowest id, so handover
// is deterministic. When the last participant leaves, the chat becomes
// deactivated: a terminal state where every further membership call
// fails with "chat inactive".
func (s *Service) Leave(chatID, requesterID string) (*models.Chat, error) {
	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.loadGroup(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(requesterID) {
		return nil, apperr.Validation("you are not in this group")
	}

	remaining := chat.WithoutParticipant(requesterID)

	if chat.AdminID == requesterID {
		if len(remaining) > 0 {
			sorted := make([]string, len(remaining))
			copy(sorted, remaining)
			sort.Strings(sorted)
			chat.AdminID = sorted[0]
			chat.ParticipantIDs = remaining
		} else {
			chat.AdminID = ""
			chat.ParticipantIDs = remaining
			chat.IsActive = false
		}
	} else {
		chat.ParticipantIDs = remaining
	}

	if err := s.Storage.SaveChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}
