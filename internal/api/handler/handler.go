package handler

import (
	"net/http"

	"chatware/backend/internal/apperr"
	"chatware/backend/internal/chathub"
	"chatware/backend/internal/chats"
	"chatware/backend/internal/pipeline"
	"chatware/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP boundary to the services. Every route maps 1:1
// onto a service operation; no business logic lives here.
type Handler struct {
	Hub       *chathub.ManagerService
	Pipeline  *pipeline.Service
	Chats     *chats.Service
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, p *pipeline.Service, c *chats.Service, s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{
		Hub:       hub,
		Pipeline:  p,
		Chats:     c,
		Storage:   s,
		JWTSecret: jwtSecret,
	}
}

// RegisterRoutes attaches every route to the gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/register", h.Register)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/chats", h.AccessChat)
		api.GET("/chats", h.GetChats)
		api.POST("/chats/group", h.CreateGroup)
		api.PUT("/chats/group/:id", h.RenameGroup)
		api.PUT("/chats/group/:id/add", h.AddToGroup)
		api.PUT("/chats/group/:id/remove", h.RemoveFromGroup)
		api.PUT("/chats/group/:id/leave", h.LeaveGroup)

		api.POST("/messages", h.SendMessage)
		api.GET("/messages/unread", h.GetUnreadCount)
		api.GET("/messages/:chatId", h.GetMessages)
		api.DELETE("/messages/:id", h.DeleteMessage)
		api.POST("/messages/:id/reactions", h.AddReaction)

		api.GET("/keys", h.GetPublicKeys)
		api.POST("/keys", h.PublishPublicKey)
	}
}

// respondError maps the apperr taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound, apperr.KindKeyNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
