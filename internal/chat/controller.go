package chat

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ChatController struct {
	service ChatServiceInterface
}

func NewChatController(service ChatServiceInterface) *ChatController {
	return &ChatController{
		service: service,
	}
}

func (cc *ChatController) SetupRoutes(api gin.IRouter) {
	api.GET("/tasks/:id/messages", cc.List)
	api.POST("/tasks/:id/messages", cc.Send)
	api.POST("/messages/:id/read", cc.MarkRead)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		logrus.WithError(err).Error("Chat request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (cc *ChatController) List(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	messages, err := cc.service.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

func (cc *ChatController) Send(c *gin.Context) {
	var req SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	msg, err := cc.service.Send(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (cc *ChatController) MarkRead(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	msg, err := cc.service.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}
