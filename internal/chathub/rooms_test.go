package chathub_test

import (
	"testing"

	"chatware/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRoomRouter_JoinAndMembers(t *testing.T) {
	r := chathub.NewRoomRouter()

	r.Join("conn_1", "chat_1")
	r.Join("conn_2", "chat_1")
	r.Join("conn_2", "chat_2")

	assert.ElementsMatch(t, []string{"conn_1", "conn_2"}, r.Members("chat_1"))
	assert.ElementsMatch(t, []string{"conn_2"}, r.Members("chat_2"))
	assert.Empty(t, r.Members("chat_3"))
}

func TestRoomRouter_JoinIsIdempotent(t *testing.T) {
	r := chathub.NewRoomRouter()

	r.Join("conn_1", "chat_1")
	r.Join("conn_1", "chat_1")

	assert.Equal(t, []string{"conn_1"}, r.Members("chat_1"))
}

func TestRoomRouter_LeaveDropsEveryRoom(t *testing.T) {
	r := chathub.NewRoomRouter()

	r.Join("conn_1", "chat_1")
	r.Join("conn_1", "chat_2")
	r.Join("conn_2", "chat_1")

	r.Leave("conn_1")

	assert.Equal(t, []string{"conn_2"}, r.Members("chat_1"))
	assert.Empty(t, r.Members("chat_2"))

	// Leaving twice is harmless.
	r.Leave("conn_1")
	assert.Equal(t, []string{"conn_2"}, r.Members("chat_1"))
}
