package chathub

import (
	"sync"
	"time"
)

// Registry maps users to their live connections and is the single source
// of presence: a user is online iff their connection set is non-empty.
// Both directions are O(1). All state is process-lifetime only; nothing
// here is persisted.
type Registry struct {
	mu         sync.RWMutex
	byUser     map[string]map[string]struct{} // userID -> set of connIDs
	byConn     map[string]string              // connID -> userID
	lastActive map[string]time.Time           // connID -> last transport activity
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:     make(map[string]map[string]struct{}),
		byConn:     make(map[string]string),
		lastActive: make(map[string]time.Time),
	}
}

// Register adds connID to userID's connection set and reports whether
// this was the user's first connection (an offline -> online transition).
func (r *Registry) Register(userID, connID string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.byUser[userID] = conns
	}
	first = len(conns) == 0
	conns[connID] = struct{}{}
	r.byConn[connID] = userID
	r.lastActive[connID] = time.Now()
	return first
}

// Unregister removes a connection. It reports the owning user and
// whether the user's connection set became empty (an online -> offline
// transition). Unregistering an unknown connection is a no-op.
func (r *Registry) Unregister(connID string) (userID string, offline bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok = r.byConn[connID]
	if !ok {
		return "", false, false
	}
	delete(r.byConn, connID)
	delete(r.lastActive, connID)

	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		return userID, true, true
	}
	return userID, false, true
}

// Owner returns the user a connection belongs to.
func (r *Registry) Owner(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// Online reports whether the user has at least one live connection.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// ConnectionsOf returns a snapshot of the user's live connections. Empty
// when the user is offline.
func (r *Registry) ConnectionsOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]string, 0, len(r.byUser[userID]))
	for connID := range r.byUser[userID] {
		conns = append(conns, connID)
	}
	return conns
}

// OnlineUsers returns a snapshot of every user with a live connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}

// Touch records transport activity on a connection. Called by the pumps
// on every inbound frame and pong.
func (r *Registry) Touch(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[connID]; ok {
		r.lastActive[connID] = time.Now()
	}
}

// Stale returns connections with no transport activity within ttl.
// Half-open connections would otherwise leak registry entries forever.
func (r *Registry) Stale(ttl time.Duration, now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []string
	for connID, at := range r.lastActive {
		if now.Sub(at) > ttl {
			stale = append(stale, connID)
		}
	}
	return stale
}
