package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/observability"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

type client struct {
	conn   *websocket.Conn
	topic  string
	userID string
	role   models.Role
	send   chan []byte
}

// Hub tracks the websocket connections of this process by topic.
type Hub struct {
	mutex       sync.Mutex
	connections map[string]map[*client]bool
	authorizer  Authorizer
}

func NewHub() *Hub {
	return &Hub{connections: make(map[string]map[*client]bool)}
}

func (h *Hub) register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.connections[c.topic] == nil {
		h.connections[c.topic] = make(map[*client]bool)
	}
	h.connections[c.topic][c] = true
	observability.GlobalMetrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, ok := h.connections[c.topic]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.connections, c.topic)
	}
	close(c.send)
	observability.GlobalMetrics.RealtimeConnections.Dec()
}

// Subscribers reports how many local connections listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections[topic])
}

// Broadcast queues message for every local subscriber of topic. A
// subscriber whose buffer is full is dropped rather than blocking the rest.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mutex.Lock()
	var slow []*client
	for c := range h.connections[topic] {
		select {
		case c.send <- message:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.Unlock()

	for _, c := range slow {
		logrus.WithField("topic", topic).Warn("Dropping slow websocket subscriber")
		h.unregister(c)
	}
}

// Publish delivers to local subscribers only. Multi-instance deployments
// publish through a Broker instead.
func (h *Hub) Publish(_ context.Context, topic, eventType string, payload interface{}) error {
	message, err := encode(topic, eventType, payload)
	if err != nil {
		return err
	}
	h.Broadcast(topic, message)
	return nil
}

// Recheck runs the hub's authorizer again for every local subscriber of
// topic and disconnects the ones it now rejects. Authorizer failures other
// than ErrForbidden keep the subscriber.
func (h *Hub) Recheck(ctx context.Context, topic string) error {
	kind, id, err := ParseTopic(topic)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	authorizer := h.authorizer
	clients := make([]*client, 0, len(h.connections[topic]))
	for c := range h.connections[topic] {
		clients = append(clients, c)
	}
	h.mutex.Unlock()

	if authorizer == nil {
		return nil
	}

	for _, c := range clients {
		err := authorizer.CanSubscribe(ctx, c.userID, c.role, kind, id)
		switch {
		case err == nil:
		case errors.Is(err, ErrForbidden):
			logrus.WithFields(logrus.Fields{
				"user_id": c.userID,
				"topic":   topic,
			}).Info("Closing websocket subscription after access change")
			h.unregister(c)
		default:
			logrus.WithError(err).WithField("topic", topic).Warn("Failed to recheck websocket subscriber")
		}
	}
	return nil
}

// Serve registers conn on topic for userID and blocks until the connection
// closes. Writes happen only on the write loop goroutine.
func (h *Hub) Serve(conn *websocket.Conn, topic, userID string, role models.Role) {
	c := &client{
		conn:   conn,
		topic:  topic,
		userID: userID,
		role:   role,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop()
	h.unregister(c)
	<-done
	conn.Close()
}

// readLoop only services control frames; subscribers never send data.
func (c *client) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("topic", c.topic).Debug("WebSocket closed")
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).Debug("Failed to send WebSocket message")
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
