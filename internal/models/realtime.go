package models

import "encoding/json"

// EventType enumerates every message that crosses a realtime connection.
// The set is closed: the hub dispatches on it exhaustively and drops
// anything it does not recognize.
type EventType string

const (
	// Client -> server.
	EventSetup      EventType = "setup"
	EventJoinChat   EventType = "join-chat"
	EventTyping     EventType = "typing"
	EventStopTyping EventType = "stop-typing"
	EventNewMessage EventType = "new-message"
	EventCallUser   EventType = "call-user"
	EventAnswerCall EventType = "answer-call"
	EventRejectCall EventType = "reject-call"
	EventEndCall    EventType = "end-call"

	// Server -> client.
	EventMessageReceived EventType = "message-received"
	EventUserOnline      EventType = "user-online"
	EventOnlineUsers     EventType = "online-users"
	EventCallIncoming    EventType = "call-incoming"
	EventCallAccepted    EventType = "call-accepted"
	EventCallRejected    EventType = "call-rejected"
	EventCallEnded       EventType = "call-ended"
)

// Event is the tagged union carried over websocket connections and the
// Redis bridge. Type selects which of the optional fields are meaningful.
type Event struct {
	Type   EventType `json:"type"`
	ChatID string    `json:"chat_id,omitempty"`
	UserID string    `json:"user_id,omitempty"`

	// Message is set for new-message / message-received.
	Message *Message `json:"message,omitempty"`

	// Online is meaningful for user-online; UserIDs for online-users.
	Online  bool     `json:"online,omitempty"`
	UserIDs []string `json:"user_ids,omitempty"`

	// ExcludeUserID never leaves the process boundary as a delivery
	// target: it rides along on the Redis bridge so remote processes can
	// honor sender exclusion when they fan out.
	ExcludeUserID string `json:"exclude_user_id,omitempty"`

	// TargetUserID addresses user-directed events (call signaling): the
	// hub delivers to every connection of that user instead of a room.
	TargetUserID string `json:"target_user_id,omitempty"`

	// Signal is the opaque WebRTC offer/answer blob for call-user,
	// call-incoming, answer-call and call-accepted. The hub relays it
	// without inspecting it.
	Signal json.RawMessage `json:"signal,omitempty"`

	// CallType distinguishes audio from video on call-user/call-incoming.
	CallType string `json:"call_type,omitempty"`
}
