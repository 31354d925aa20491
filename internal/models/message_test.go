package models_test

import (
	"testing"

	"chatware/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMessage_ToggleReaction(t *testing.T) {
	msg := &models.Message{}

	assert.True(t, msg.ToggleReaction("user_A", "👍"))
	assert.Len(t, msg.Reactions, 1)

	// Same pair again removes it.
	assert.False(t, msg.ToggleReaction("user_A", "👍"))
	assert.Empty(t, msg.Reactions)

	// Different emoji or different user are distinct pairs.
	msg.ToggleReaction("user_A", "👍")
	msg.ToggleReaction("user_A", "❤️")
	msg.ToggleReaction("user_B", "👍")
	assert.Len(t, msg.Reactions, 3)

	msg.ToggleReaction("user_A", "👍")
	assert.Equal(t, models.ReactionList{
		{UserID: "user_A", Emoji: "❤️"},
		{UserID: "user_B", Emoji: "👍"},
	}, msg.Reactions)
}

func TestMessage_Redact(t *testing.T) {
	msg := &models.Message{
		Content:        "ciphertext",
		IV:             "00112233",
		Type:           models.MessageTypeFile,
		AttachmentURL:  "/uploads/doc.pdf",
		AttachmentName: "doc.pdf",
		ReadBy:         []string{"user_B"},
	}

	msg.Redact()

	assert.True(t, msg.Deleted)
	assert.Equal(t, models.DeletedPlaceholder, msg.Content)
	assert.Empty(t, msg.IV)
	assert.Empty(t, msg.AttachmentURL)
	assert.Empty(t, msg.AttachmentName)
	// Read history survives the redaction.
	assert.Equal(t, []string{"user_B"}, []string(msg.ReadBy))
}

func TestMessage_IsReadBy(t *testing.T) {
	msg := &models.Message{ReadBy: []string{"user_B", "user_C"}}

	assert.True(t, msg.IsReadBy("user_B"))
	assert.False(t, msg.IsReadBy("user_A"))
}

func TestReactionList_ValueAndScan(t *testing.T) {
	var empty models.ReactionList
	v, err := empty.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)

	list := models.ReactionList{{UserID: "user_A", Emoji: "👍"}}
	v, err = list.Value()
	assert.NoError(t, err)

	var scanned models.ReactionList
	assert.NoError(t, scanned.Scan(v))
	assert.Equal(t, list, scanned)

	assert.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
}
