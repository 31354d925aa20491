package chathub_test

import (
	"testing"
	"time"

	"chatware/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_PresenceFollowsConnectionSet(t *testing.T) {
	r := chathub.NewRegistry()

	assert.False(t, r.Online("user_A"))

	first := r.Register("user_A", "conn_1")
	assert.True(t, first, "first connection is an offline->online transition")
	assert.True(t, r.Online("user_A"))

	// A second device does not re-announce presence.
	second := r.Register("user_A", "conn_2")
	assert.False(t, second)
	assert.True(t, r.Online("user_A"))

	// Dropping one of two connections keeps the user online.
	userID, offline, ok := r.Unregister("conn_1")
	assert.True(t, ok)
	assert.Equal(t, "user_A", userID)
	assert.False(t, offline)
	assert.True(t, r.Online("user_A"))

	// Dropping the last connection takes the user offline.
	userID, offline, ok = r.Unregister("conn_2")
	assert.True(t, ok)
	assert.Equal(t, "user_A", userID)
	assert.True(t, offline)
	assert.False(t, r.Online("user_A"))
}

func TestRegistry_UnknownUnregisterIsNoOp(t *testing.T) {
	r := chathub.NewRegistry()
	r.Register("user_A", "conn_1")

	_, _, ok := r.Unregister("no_such_conn")
	assert.False(t, ok)
	assert.True(t, r.Online("user_A"))
}

func TestRegistry_OwnerAndOnlineUsers(t *testing.T) {
	r := chathub.NewRegistry()
	r.Register("user_A", "conn_1")
	r.Register("user_B", "conn_2")

	owner, ok := r.Owner("conn_2")
	assert.True(t, ok)
	assert.Equal(t, "user_B", owner)

	users := r.OnlineUsers()
	assert.ElementsMatch(t, []string{"user_A", "user_B"}, users)
}

func TestRegistry_StaleDetection(t *testing.T) {
	r := chathub.NewRegistry()
	r.Register("user_A", "conn_1")
	r.Register("user_B", "conn_2")

	// Nothing is stale right after registration.
	assert.Empty(t, r.Stale(time.Minute, time.Now()))

	// Both connections look stale far enough into the future.
	future := time.Now().Add(5 * time.Minute)
	assert.ElementsMatch(t, []string{"conn_1", "conn_2"}, r.Stale(time.Minute, future))

	// Touching a connection refreshes it; the silent one stays stale.
	time.Sleep(20 * time.Millisecond)
	r.Touch("conn_1")
	stale := r.Stale(10*time.Millisecond, time.Now())
	assert.Equal(t, []string{"conn_2"}, stale)
}

func TestRegistry_TouchUnknownConnection(t *testing.T) {
	r := chathub.NewRegistry()
	r.Touch("ghost")
	assert.Empty(t, r.Stale(0, time.Now().Add(time.Hour)))
}
