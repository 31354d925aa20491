package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chatware/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventChannel is the Redis pub/sub channel carrying realtime events
// between processes. Every hub instance subscribes to it so room fan-out
// is not process-local.
const EventChannel = "chat:events"

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	// Users
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	TouchLastSeen(userID string, at time.Time) error

	// Chats
	CreateChat(chat *models.Chat) error
	SaveChat(chat *models.Chat) error
	GetChatByID(id string) (*models.Chat, error)
	GetChatsForUser(userID string) ([]models.Chat, error)
	FindDirectChat(userA, userB string) (*models.Chat, error)
	UpdateLatestMessage(chatID, messageID string) error

	// Messages
	CreateMessage(msg *models.Message) error
	SaveMessage(msg *models.Message) error
	GetMessageByID(id string) (*models.Message, error)
	GetChatMessages(chatID string) ([]models.Message, error)
	MarkChatRead(chatID, userID string) error
	UnreadCount(chatID, userID string) (int64, error)
	TotalUnread(userID string) (int64, error)

	// Key directory
	UpsertPublicKey(key *models.PublicKey) error
	GetPublicKeys() ([]models.PublicKey, error)

	// Cross-process event bridge
	PublishEvent(event models.Event) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser stores a user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastSeen records the moment a user's last connection went away.
func (s *Service) TouchLastSeen(userID string, at time.Time) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", at).Error
}

// UpsertPublicKey publishes (or replaces) a user's directory entry.
func (s *Service) UpsertPublicKey(key *models.PublicKey) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"key", "updated_at"}),
	}).Create(key).Error
}

func (s *Service) GetPublicKeys() ([]models.PublicKey, error) {
	var keys []models.PublicKey
	if err := s.DB.Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// PublishEvent pushes a realtime event onto the Redis bridge so every
// process's hub can fan it out to its local connections.
func (s *Service) PublishEvent(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, EventChannel, string(payload)).Err()
}

// SubscribeEvents subscribes to the cross-process event bridge.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventChannel)
}
