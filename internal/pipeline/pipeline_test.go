package pipeline_test

import (
	"testing"

	"chatware/backend/internal/apperr"
	"chatware/backend/internal/models"
	"chatware/backend/internal/pipeline"
	"chatware/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDirectChat(t *testing.T, mem *storage.Memory) *models.Chat {
	t.Helper()
	require.NoError(t, mem.SaveUser(&models.User{ID: "user_A", DisplayName: "Alice", Email: "a@example.com"}))
	require.NoError(t, mem.SaveUser(&models.User{ID: "user_B", DisplayName: "Bob", Email: "b@example.com"}))

	chat := &models.Chat{
		IsGroup:        false,
		ParticipantIDs: []string{"user_A", "user_B"},
		ChatName:       "Alice, Bob",
		IsActive:       true,
	}
	require.NoError(t, mem.CreateChat(chat))
	return chat
}

func TestSubmit_PersistsAndBroadcasts(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	msg, err := p.Submit("user_A", chat.ID, "hi", "", models.MessageTypeText, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Empty(t, msg.ReadBy, "a new message has no readers")
	require.NotNil(t, msg.Sender)
	assert.Equal(t, "Alice", msg.Sender.DisplayName)

	// Advisory pointer follows the newest message.
	stored, err := mem.GetChatByID(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, stored.LatestMessageID)

	// Fan-out goes to the room, excluding the sender.
	require.Len(t, mem.Events, 1)
	assert.Equal(t, models.EventMessageReceived, mem.Events[0].Type)
	assert.Equal(t, chat.ID, mem.Events[0].ChatID)
	assert.Equal(t, "user_A", mem.Events[0].ExcludeUserID)
}

func TestSubmit_Validation(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	_, err := p.Submit("user_A", "no_such_chat", "hi", "", models.MessageTypeText, nil)
	assert.True(t, apperr.IsNotFound(err))

	_, err = p.Submit("user_C", chat.ID, "hi", "", models.MessageTypeText, nil)
	assert.True(t, apperr.IsForbidden(err), "non-participants may not submit")

	_, err = p.Submit("user_A", chat.ID, "   ", "", models.MessageTypeText, nil)
	assert.True(t, apperr.IsValidation(err), "text requires non-empty content")

	_, err = p.Submit("user_A", chat.ID, "", "", models.MessageTypeImage, nil)
	assert.True(t, apperr.IsValidation(err), "non-text requires an attachment")

	_, err = p.Submit("user_A", chat.ID, "", "", models.MessageTypeImage, &pipeline.Attachment{URL: "/uploads/cat.png", Name: "cat.png"})
	assert.NoError(t, err)

	// Inactive chats accept nothing.
	chat.IsActive = false
	require.NoError(t, mem.SaveChat(chat))
	_, err = p.Submit("user_A", chat.ID, "hi", "", models.MessageTypeText, nil)
	assert.True(t, apperr.IsValidation(err))
}

// Scenario: A sends "hi"; B's unread goes 1 -> 0 across a fetch while
// A's stays 0 throughout, and A never appears in their own read set.
func TestFetch_MarksReadForRequester(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	_, err := p.Submit("user_A", chat.ID, "hi", "", models.MessageTypeText, nil)
	require.NoError(t, err)

	nB, _ := p.UnreadCount(chat.ID, "user_B")
	assert.EqualValues(t, 1, nB)
	nA, _ := p.UnreadCount(chat.ID, "user_A")
	assert.EqualValues(t, 0, nA, "sender's own message never counts as unread for them")

	msgs, err := p.Fetch(chat.ID, "user_B")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	nB, _ = p.UnreadCount(chat.ID, "user_B")
	assert.EqualValues(t, 0, nB)
	nA, _ = p.UnreadCount(chat.ID, "user_A")
	assert.EqualValues(t, 0, nA)

	// Re-read the stored message: read by B, never by the sender.
	stored, err := mem.GetMessageByID(msgs[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.IsReadBy("user_B"))
	assert.False(t, stored.IsReadBy("user_A"))
}

func TestFetch_ForbiddenForNonParticipants(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	_, err := p.Fetch(chat.ID, "user_C")
	assert.True(t, apperr.IsForbidden(err))
}

func TestFetch_OrdersAscendingAndSkipsDeleted(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	first, err := p.Submit("user_A", chat.ID, "one", "", models.MessageTypeText, nil)
	require.NoError(t, err)
	second, err := p.Submit("user_B", chat.ID, "two", "", models.MessageTypeText, nil)
	require.NoError(t, err)
	third, err := p.Submit("user_A", chat.ID, "three", "", models.MessageTypeText, nil)
	require.NoError(t, err)

	require.NoError(t, p.SoftDelete(second.ID, "user_B"))

	msgs, err := p.Fetch(chat.ID, "user_B")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, third.ID, msgs[1].ID)
}

func TestMarkRead_Idempotent(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	msg, err := p.Submit("user_A", chat.ID, "hi", "", models.MessageTypeText, nil)
	require.NoError(t, err)

	require.NoError(t, p.MarkRead(chat.ID, "user_B"))
	once, err := mem.GetMessageByID(msg.ID)
	require.NoError(t, err)

	require.NoError(t, p.MarkRead(chat.ID, "user_B"))
	twice, err := mem.GetMessageByID(msg.ID)
	require.NoError(t, err)

	assert.Equal(t, once.ReadBy, twice.ReadBy)
	n, _ := p.UnreadCount(chat.ID, "user_B")
	assert.EqualValues(t, 0, n)
}

func TestSoftDelete_SenderOnlyAndRedacts(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	msg, err := p.Submit("user_A", chat.ID, "", "", models.MessageTypeFile,
		&pipeline.Attachment{URL: "/uploads/doc.pdf", Name: "doc.pdf"})
	require.NoError(t, err)

	err = p.SoftDelete(msg.ID, "user_B")
	assert.True(t, apperr.IsForbidden(err), "only the sender may delete")

	require.NoError(t, p.SoftDelete(msg.ID, "user_A"))

	stored, err := mem.GetMessageByID(msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	assert.Equal(t, models.DeletedPlaceholder, stored.Content)
	assert.Empty(t, stored.AttachmentURL)
	assert.Empty(t, stored.AttachmentName)

	// Deletion is silent: no additional broadcast beyond the submit.
	assert.Len(t, mem.Events, 1)

	// Deleted messages stop counting as unread.
	n, _ := p.UnreadCount(chat.ID, "user_B")
	assert.EqualValues(t, 0, n)
}

func TestToggleReaction_PairUniqueness(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	p := pipeline.NewService(mem)

	msg, err := p.Submit("user_A", chat.ID, "hi", "", models.MessageTypeText, nil)
	require.NoError(t, err)

	count := func() int {
		stored, err := mem.GetMessageByID(msg.ID)
		require.NoError(t, err)
		n := 0
		for _, r := range stored.Reactions {
			if r.UserID == "user_B" && r.Emoji == "👍" {
				n++
			}
		}
		return n
	}

	_, err = p.ToggleReaction(msg.ID, "user_B", "👍")
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	_, err = p.ToggleReaction(msg.ID, "user_B", "👍")
	require.NoError(t, err)
	assert.Equal(t, 0, count(), "toggling twice removes the pair")

	_, err = p.ToggleReaction(msg.ID, "user_B", "👍")
	require.NoError(t, err)
	assert.Equal(t, 1, count(), "a third toggle leaves exactly one")

	// A different user's identical emoji is a distinct pair.
	updated, err := p.ToggleReaction(msg.ID, "user_A", "👍")
	require.NoError(t, err)
	assert.Len(t, updated.Reactions, 2)

	_, err = p.ToggleReaction(msg.ID, "user_B", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestTotalUnread_AcrossChats(t *testing.T) {
	mem := storage.NewMemory()
	chat := seedDirectChat(t, mem)
	require.NoError(t, mem.SaveUser(&models.User{ID: "user_C", DisplayName: "Cara", Email: "c@example.com"}))

	group := &models.Chat{
		IsGroup:        true,
		ParticipantIDs: []string{"user_A", "user_B", "user_C"},
		AdminID:        "user_A",
		ChatName:       "trio",
		IsActive:       true,
	}
	require.NoError(t, mem.CreateChat(group))

	p := pipeline.NewService(mem)

	_, err := p.Submit("user_A", chat.ID, "direct", "", models.MessageTypeText, nil)
	require.NoError(t, err)
	_, err = p.Submit("user_C", group.ID, "group one", "", models.MessageTypeText, nil)
	require.NoError(t, err)
	_, err = p.Submit("user_C", group.ID, "group two", "", models.MessageTypeText, nil)
	require.NoError(t, err)

	total, err := p.TotalUnread("user_B")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	total, err = p.TotalUnread("user_C")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "own messages are excluded")

	require.NoError(t, p.MarkRead(group.ID, "user_B"))
	total, err = p.TotalUnread("user_B")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
