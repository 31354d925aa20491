package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type accessChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AccessChat finds or lazily creates the one-on-one chat with another
// user.
func (h *Handler) AccessChat(c *gin.Context) {
	var req accessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "UserId param not sent with request"})
		return
	}

	chat, err := h.Chats.AccessDirect(currentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

// GetChats lists the requester's active chats.
func (h *Handler) GetChats(c *gin.Context) {
	chatList, err := h.Chats.ChatsFor(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chats": chatList})
}

type createGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Users       []string `json:"users" binding:"required"`
	Description string   `json:"description"`
}

// CreateGroup creates a group chat with the requester as admin.
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide all required fields"})
		return
	}

	chat, err := h.Chats.CreateGroup(currentUserID(c), req.Name, req.Description, req.Users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "chat": chat})
}

type renameGroupRequest struct {
	ChatName    string `json:"chat_name" binding:"required"`
	Description string `json:"description"`
}

// RenameGroup updates a group's name and description. Admin only.
func (h *Handler) RenameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Chat name is required"})
		return
	}

	chat, err := h.Chats.Rename(c.Param("id"), currentUserID(c), req.ChatName, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

type memberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddToGroup adds a member to a group. Admin only.
func (h *Handler) AddToGroup(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID is required"})
		return
	}

	chat, err := h.Chats.AddMember(c.Param("id"), currentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

// RemoveFromGroup removes a non-admin member from a group. Admin only.
func (h *Handler) RemoveFromGroup(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID is required"})
		return
	}

	chat, err := h.Chats.RemoveMember(c.Param("id"), currentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

// LeaveGroup removes the requester from a group, handing over the admin
// role or deactivating the chat as needed.
func (h *Handler) LeaveGroup(c *gin.Context) {
	if _, err := h.Chats.Leave(c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "You have left the group"})
}
