package chathub

import "chatware/backend/internal/models"

// Client is the interface for one live connection of one user. It
// abstracts the underlying transport so the hub can manage websocket
// connections and test doubles uniformly. A user may hold several
// clients at once (multi-device).
type Client interface {
	// GetConnID returns the unique identifier of this connection.
	GetConnID() string
	// GetUserID returns the user this connection belongs to.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes outbound events
	// to. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and send channel.
	Close()
}

// ClientEvent pairs an inbound event with the connection it arrived on,
// so the hub can attribute it without trusting the payload.
type ClientEvent struct {
	ConnID string
	Event  models.Event
}
