package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"chatware/backend/internal/models"

	"github.com/google/uuid"
)

// Memory is an in-memory Storage implementation with the same semantics
// as the Postgres-backed Service. It backs the service tests and is
// handy for running the server without external dependencies.
type Memory struct {
	mu       sync.Mutex
	users    map[string]*models.User
	chats    map[string]*models.Chat
	messages map[string]*models.Message
	order    []string // message ids in insertion order
	keys     map[string]*models.PublicKey

	// Events records everything published to the bridge, in order.
	Events []models.Event
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]*models.User),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string]*models.Message),
		keys:     make(map[string]*models.PublicKey),
	}
}

func (m *Memory) SaveUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *Memory) GetUserByID(id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *Memory) TouchLastSeen(userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		user.LastSeen = at
	}
	return nil
}

func (m *Memory) CreateChat(chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	c := *chat
	m.chats[chat.ID] = &c
	return nil
}

func (m *Memory) SaveChat(chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat.ID == "" {
		return fmt.Errorf("chat has no id")
	}
	chat.UpdatedAt = time.Now()
	c := *chat
	m.chats[chat.ID] = &c
	return nil
}

func (m *Memory) GetChatByID(id string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *chat
	return &c, nil
}

func (m *Memory) GetChatsForUser(userID string) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chat
	for _, chat := range m.chats {
		if chat.IsActive && chat.HasParticipant(userID) {
			out = append(out, *chat)
		}
	}
	// Most recently updated first, like the Postgres query.
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *Memory) FindDirectChat(userA, userB string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chat := range m.chats {
		if !chat.IsGroup && chat.HasParticipant(userA) && chat.HasParticipant(userB) {
			c := *chat
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateLatestMessage(chatID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat, ok := m.chats[chatID]; ok {
		chat.LatestMessageID = messageID
	}
	return nil
}

func (m *Memory) CreateMessage(msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	stored := *msg
	m.messages[msg.ID] = &stored
	m.order = append(m.order, msg.ID)
	return nil
}

func (m *Memory) SaveMessage(msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[msg.ID]; !ok {
		return fmt.Errorf("message %s does not exist", msg.ID)
	}
	stored := *msg
	m.messages[msg.ID] = &stored
	return nil
}

func (m *Memory) GetMessageByID(id string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	stored := *msg
	return &stored, nil
}

func (m *Memory) GetChatMessages(chatID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, id := range m.order {
		msg := m.messages[id]
		if msg.ChatID == chatID && !msg.Deleted {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *Memory) MarkChatRead(chatID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ChatID != chatID || msg.SenderID == userID || msg.IsReadBy(userID) {
			continue
		}
		msg.ReadBy = append(msg.ReadBy, userID)
	}
	return nil
}

func (m *Memory) UnreadCount(chatID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		if msg.ChatID == chatID && !msg.Deleted && msg.SenderID != userID && !msg.IsReadBy(userID) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) TotalUnread(userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		chat, ok := m.chats[msg.ChatID]
		if !ok || !chat.IsActive || !chat.HasParticipant(userID) {
			continue
		}
		if !msg.Deleted && msg.SenderID != userID && !msg.IsReadBy(userID) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpsertPublicKey(key *models.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key.UpdatedAt = time.Now()
	k := *key
	m.keys[key.UserID] = &k
	return nil
}

func (m *Memory) GetPublicKeys() ([]models.PublicKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PublicKey, 0, len(m.keys))
	for _, key := range m.keys {
		out = append(out, *key)
	}
	return out, nil
}

func (m *Memory) PublishEvent(event models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}
