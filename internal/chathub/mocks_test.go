package chathub_test

import (
	"chatware/backend/internal/models"
)

// mockClient is a test double for the chathub.Client interface with a
// buffered send channel so hub deliveries never block.
type mockClient struct {
	connID string
	userID string
	send   chan models.Event
	closed bool
}

func newMockClient(connID, userID string) *mockClient {
	return &mockClient{
		connID: connID,
		userID: userID,
		send:   make(chan models.Event, 16),
	}
}

func (c *mockClient) GetConnID() string                   { return c.connID }
func (c *mockClient) GetUserID() string                   { return c.userID }
func (c *mockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *mockClient) Run()                                {}

func (c *mockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// drain empties the send channel and returns everything received so far.
func (c *mockClient) drain() []models.Event {
	var events []models.Event
	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func eventTypes(events []models.Event) []models.EventType {
	types := make([]models.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}
