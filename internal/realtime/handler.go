package realtime

import (
	"context"
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrForbidden = errors.New("not allowed to subscribe to topic")

// Authorizer decides whether a user may subscribe to a topic.
type Authorizer interface {
	CanSubscribe(ctx context.Context, userID string, role models.Role, kind TopicKind, id string) error
}

type Handler struct {
	hub        *Hub
	authorizer Authorizer
	upgrader   websocket.Upgrader
}

// NewHandler also installs authorizer on hub, so Recheck applies the same
// rules as Subscribe.
func NewHandler(hub *Hub, authorizer Authorizer) *Handler {
	hub.mutex.Lock()
	hub.authorizer = authorizer
	hub.mutex.Unlock()

	return &Handler{
		hub:        hub,
		authorizer: authorizer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile clients send no Origin; auth is the bearer token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades GET /ws?topic=kind:id after checking access.
func (h *Handler) Subscribe(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	topic := c.Query("topic")
	kind, id, err := ParseTopic(topic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic"})
		return
	}

	if err := h.authorizer.CanSubscribe(c.Request.Context(), userID, role, kind, id); err != nil {
		if errors.Is(err, ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		logrus.WithError(err).Error("Failed to authorize subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"topic":   topic,
	}).Debug("WebSocket subscribed")

	h.hub.Serve(conn, topic, userID, role)
}
