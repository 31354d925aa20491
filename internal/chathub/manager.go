package chathub

import (
	"log"
	"time"

	"chatware/backend/internal/models"
	"chatware/backend/internal/storage"
)

const (
	// defaultIdleTTL is how long a connection may stay silent before the
	// sweep treats it as half-open and unregisters it.
	defaultIdleTTL = 2 * time.Minute

	defaultSweepInterval = 30 * time.Second
)

// ManagerService is the realtime hub: a single goroutine owning the
// connection registry, the room router, and the typing relay. Everything
// mutating hub state arrives over its channels, so register/unregister
// races for the same user cannot occur. Failures in here are logged and
// never surfaced; the hub is a best-effort subsystem.
type ManagerService struct {
	Registry *Registry
	Rooms    *RoomRouter

	// Clients holds every live connection, keyed by connection id.
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan string // connection ids
	IncomingCh   chan ClientEvent
	PubSubCh     chan models.Event

	Storage storage.Storage

	// Subscriber, when set, feeds PubSubCh from the Redis bridge. Left
	// nil in tests, where events are pushed onto PubSubCh directly.
	Subscriber EventSubscriber

	// IdleTTL bounds silence on a connection before the sweep drops it.
	IdleTTL time.Duration

	// SweepInterval is how often the idle sweep runs.
	SweepInterval time.Duration
}

func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Registry:      NewRegistry(),
		Rooms:         NewRoomRouter(),
		Clients:       make(map[string]Client),
		RegisterCh:    make(chan Client),
		UnregisterCh:  make(chan string),
		IncomingCh:    make(chan ClientEvent),
		PubSubCh:      make(chan models.Event),
		Storage:       s,
		IdleTTL:       defaultIdleTTL,
		SweepInterval: defaultSweepInterval,
	}
}

// Touch records transport activity; called by the pumps on every frame.
func (m *ManagerService) Touch(connID string) {
	m.Registry.Touch(connID)
}

// Run is the hub's main loop. Start it in its own goroutine.
func (m *ManagerService) Run() {
	m.StartBridgeListener()

	interval := m.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	sweep := time.NewTicker(interval)
	defer sweep.Stop()

	for {
		select {
		case client := <-m.RegisterCh:
			m.registerClient(client)
		case connID := <-m.UnregisterCh:
			m.unregisterClient(connID)
		case ce := <-m.IncomingCh:
			m.dispatch(ce)
		case event := <-m.PubSubCh:
			m.fanOut(event)
		case <-sweep.C:
			m.sweepIdle()
		}
	}
}

func (m *ManagerService) registerClient(client Client) {
	connID := client.GetConnID()
	userID := client.GetUserID()

	m.Clients[connID] = client
	first := m.Registry.Register(userID, connID)

	// The fresh connection gets the presence snapshot immediately.
	m.deliver(client, models.Event{
		Type:    models.EventOnlineUsers,
		UserIDs: m.Registry.OnlineUsers(),
	})

	if first {
		m.publish(models.Event{
			Type:   models.EventUserOnline,
			UserID: userID,
			Online: true,
		})
	}
	log.Printf("Client %s registered for user %s", connID, userID)
}

func (m *ManagerService) unregisterClient(connID string) {
	client, known := m.Clients[connID]
	m.Rooms.Leave(connID)
	userID, offline, ok := m.Registry.Unregister(connID)
	if known {
		delete(m.Clients, connID)
		client.Close()
	}
	if !ok {
		return // unknown connection: no-op
	}

	if offline {
		if m.Storage != nil {
			if err := m.Storage.TouchLastSeen(userID, time.Now()); err != nil {
				log.Printf("ERROR: Failed to persist last_seen for %s: %v", userID, err)
			}
		}
		m.publish(models.Event{
			Type:   models.EventUserOnline,
			UserID: userID,
			Online: false,
		})
	}
	log.Printf("Client %s unregistered (user %s)", connID, userID)
}

// dispatch handles one inbound client event. The event union is closed;
// anything unrecognized is dropped with a log line.
func (m *ManagerService) dispatch(ce ClientEvent) {
	userID, ok := m.Registry.Owner(ce.ConnID)
	if !ok {
		return
	}
	event := ce.Event
	event.UserID = userID // never trust the payload's identity

	switch event.Type {
	case models.EventSetup:
		if client, ok := m.Clients[ce.ConnID]; ok {
			m.deliver(client, models.Event{
				Type:    models.EventOnlineUsers,
				UserIDs: m.Registry.OnlineUsers(),
			})
		}

	case models.EventJoinChat:
		// Chat membership is not re-validated here; the request boundary
		// that handed out the chat id is responsible for that.
		m.Rooms.Join(ce.ConnID, event.ChatID)

	case models.EventTyping, models.EventStopTyping:
		// Stateless relay: no de-duplication, no timer. The receiving
		// side owns any auto-clear timeout.
		event.ExcludeUserID = userID
		m.publish(event)

	case models.EventNewMessage:
		// The message itself was persisted at the request boundary; the
		// socket event only triggers fan-out to the other participants.
		if event.Message == nil {
			return
		}
		m.publish(models.Event{
			Type:          models.EventMessageReceived,
			ChatID:        event.ChatID,
			Message:       event.Message,
			ExcludeUserID: userID,
		})

	case models.EventCallUser:
		// Call signaling relays to one user, not a room. An offline callee
		// means the offer is dropped, as the original behavior has it;
		// the caller times out on their own.
		m.publish(models.Event{
			Type:         models.EventCallIncoming,
			TargetUserID: event.TargetUserID,
			UserID:       userID,
			Signal:       event.Signal,
			CallType:     event.CallType,
		})

	case models.EventAnswerCall:
		m.publish(models.Event{
			Type:         models.EventCallAccepted,
			TargetUserID: event.TargetUserID,
			UserID:       userID,
			Signal:       event.Signal,
		})

	case models.EventRejectCall:
		m.publish(models.Event{
			Type:         models.EventCallRejected,
			TargetUserID: event.TargetUserID,
			UserID:       userID,
		})

	case models.EventEndCall:
		m.publish(models.Event{
			Type:         models.EventCallEnded,
			TargetUserID: event.TargetUserID,
			UserID:       userID,
		})

	case models.EventMessageReceived, models.EventUserOnline, models.EventOnlineUsers,
		models.EventCallIncoming, models.EventCallAccepted, models.EventCallRejected, models.EventCallEnded:
		// Server-to-client types are never accepted from clients.

	default:
		log.Printf("Dropping unknown event type %q from %s", event.Type, userID)
	}
}

// publish hands an event to the cross-process bridge; with no bridge (or
// a failing one) it degrades to local-only fan-out.
func (m *ManagerService) publish(event models.Event) {
	if m.Storage != nil {
		err := m.Storage.PublishEvent(event)
		if err == nil {
			return // comes back to us through the subscription
		}
		log.Printf("ERROR: Event bridge publish failed: %v", err)
	}
	m.fanOut(event)
}

// fanOut delivers a bridge event to the local connections it concerns.
func (m *ManagerService) fanOut(event models.Event) {
	switch event.Type {
	case models.EventUserOnline:
		// Presence transitions go to everyone, not a room.
		for _, client := range m.Clients {
			m.deliver(client, event)
		}

	case models.EventMessageReceived, models.EventTyping, models.EventStopTyping:
		for _, connID := range m.Rooms.Members(event.ChatID) {
			owner, ok := m.Registry.Owner(connID)
			if !ok || owner == event.ExcludeUserID {
				continue
			}
			if client, ok := m.Clients[connID]; ok {
				m.deliver(client, event)
			}
		}

	case models.EventCallIncoming, models.EventCallAccepted, models.EventCallRejected, models.EventCallEnded:
		// User-directed: every connection of the target, no room lookup.
		for _, connID := range m.Registry.ConnectionsOf(event.TargetUserID) {
			if client, ok := m.Clients[connID]; ok {
				m.deliver(client, event)
			}
		}

	default:
		// Client-to-server types never ride the bridge.
	}
}

// deliver performs a non-blocking send; a client that cannot keep up is
// dropped the same way a disconnect would drop it.
func (m *ManagerService) deliver(client Client, event models.Event) {
	select {
	case client.GetSendChannel() <- event:
	default:
		log.Printf("Client %s send buffer full, dropping connection", client.GetConnID())
		m.unregisterClient(client.GetConnID())
	}
}

func (m *ManagerService) sweepIdle() {
	ttl := m.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	for _, connID := range m.Registry.Stale(ttl, time.Now()) {
		log.Printf("Sweeping idle connection %s", connID)
		m.unregisterClient(connID)
	}
}
