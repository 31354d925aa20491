package chathub

import "sync"

// RoomRouter tracks which connections are subscribed to which chat's
// broadcast group. It deliberately does not validate chat membership:
// that is the caller's responsibility at the request boundary. Room
// state is process-local and vanishes with the connection; the Redis
// bridge covers other processes.
type RoomRouter struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]struct{} // chatID -> set of connIDs
	byConn map[string]map[string]struct{} // connID -> set of chatIDs
}

func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		rooms:  make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join subscribes a connection to a chat's broadcast group.
func (r *RoomRouter) Join(connID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[chatID] == nil {
		r.rooms[chatID] = make(map[string]struct{})
	}
	r.rooms[chatID][connID] = struct{}{}

	if r.byConn[connID] == nil {
		r.byConn[connID] = make(map[string]struct{})
	}
	r.byConn[connID][chatID] = struct{}{}
}

// Leave drops a connection from every room. Leaving is implicit on
// disconnect; there is no per-room leave operation.
func (r *RoomRouter) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for chatID := range r.byConn[connID] {
		delete(r.rooms[chatID], connID)
		if len(r.rooms[chatID]) == 0 {
			delete(r.rooms, chatID)
		}
	}
	delete(r.byConn, connID)
}

// Members returns a snapshot of the connections subscribed to a chat.
func (r *RoomRouter) Members(chatID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]string, 0, len(r.rooms[chatID]))
	for connID := range r.rooms[chatID] {
		conns = append(conns, connID)
	}
	return conns
}
