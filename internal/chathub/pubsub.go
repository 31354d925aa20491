package chathub

import (
	"encoding/json"
	"log"

	"chatware/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventSubscriber is the slice of the storage service the bridge needs.
type EventSubscriber interface {
	SubscribeEvents() *redis.PubSub
}

// StartBridgeListener starts a goroutine feeding PubSubCh from the Redis
// event channel. Room subscriptions are process-local, so without this
// bridge a message published by another process would never reach the
// connections held here.
func (m *ManagerService) StartBridgeListener() {
	if m.Subscriber == nil {
		return
	}

	go func() {
		pubsub := m.Subscriber.SubscribeEvents()
		defer pubsub.Close()

		ch := pubsub.Channel()
		for msg := range ch {
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling bridge event: %v", err)
				continue
			}
			m.PubSubCh <- event
		}
	}()
}
