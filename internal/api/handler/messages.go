package handler

import (
	"net/http"

	"chatware/backend/internal/pipeline"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	ChatID         string `json:"chat_id" binding:"required"`
	Content        string `json:"content"`
	IV             string `json:"iv"`
	Type           string `json:"type"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentName string `json:"attachment_name"`
}

// SendMessage submits a new message through the pipeline.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var attachment *pipeline.Attachment
	if req.AttachmentURL != "" {
		attachment = &pipeline.Attachment{URL: req.AttachmentURL, Name: req.AttachmentName}
	}

	msg, err := h.Pipeline.Submit(currentUserID(c), req.ChatID, req.Content, req.IV, req.Type, attachment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

// GetMessages returns a chat's messages and marks them read for the
// requester as a side effect.
func (h *Handler) GetMessages(c *gin.Context) {
	msgs, err := h.Pipeline.Fetch(c.Param("chatId"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(msgs), "messages": msgs})
}

// DeleteMessage soft-deletes a message the requester sent.
func (h *Handler) DeleteMessage(c *gin.Context) {
	if err := h.Pipeline.SoftDelete(c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
}

type reactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// AddReaction toggles the requester's (emoji) reaction on a message.
func (h *Handler) AddReaction(c *gin.Context) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Emoji is required"})
		return
	}

	msg, err := h.Pipeline.ToggleReaction(c.Param("id"), currentUserID(c), req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// GetUnreadCount reports the per-chat and total unread counts for the
// requester.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	userChats, err := h.Chats.ChatsFor(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	type chatCount struct {
		ChatID string `json:"chat_id"`
		Count  int64  `json:"count"`
	}
	counts := make([]chatCount, 0, len(userChats))
	var total int64
	for _, chat := range userChats {
		n, err := h.Pipeline.UnreadCount(chat.ID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		counts = append(counts, chatCount{ChatID: chat.ID, Count: n})
		total += n
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "totalUnread": total, "unreadCounts": counts})
}
