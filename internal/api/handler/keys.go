package handler

import (
	"net/http"

	"chatware/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetPublicKeys returns every key-directory entry so clients can cache
// their peers' public halves.
func (h *Handler) GetPublicKeys(c *gin.Context) {
	keys, err := h.Storage.GetPublicKeys()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "keys": keys})
}

type publishKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// PublishPublicKey upserts the requester's directory entry.
func (h *Handler) PublishPublicKey(c *gin.Context) {
	var req publishKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Key is required"})
		return
	}

	entry := &models.PublicKey{UserID: currentUserID(c), Key: req.Key}
	if err := h.Storage.UpsertPublicKey(entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": entry})
}
