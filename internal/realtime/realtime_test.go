package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantKind TopicKind
		wantID   string
		wantErr  bool
	}{
		{topic: "chat:t1", wantKind: TopicChat, wantID: "t1"},
		{topic: "location:w1", wantKind: TopicLocation, wantID: "w1"},
		{topic: TaskTopic("t9"), wantKind: TopicTask, wantID: "t9"},
		{topic: "chat:", wantErr: true},
		{topic: "chat", wantErr: true},
		{topic: "admin:all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			kind, id, err := ParseTopic(tt.topic)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTopic)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

type allowOnly struct {
	userID string
}

func (a allowOnly) CanSubscribe(_ context.Context, userID string, _ models.Role, _ TopicKind, _ string) error {
	if userID != a.userID {
		return ErrForbidden
	}
	return nil
}

func startServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(auth.UserIDKey, c.Query("as"))
		c.Set(auth.RoleKey, models.RoleCustomer)
	}, NewHandler(hub, allowOnly{userID: userID}).Subscribe)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func waitForSubscribers(t *testing.T, hub *Hub, topic string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers(topic) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DeliversInOrder(t *testing.T) {
	hub := NewHub()
	server := startServer(t, hub, "c1")

	conn, _, err := dial(t, server, "topic=chat:t1&as=c1")
	require.NoError(t, err)
	defer conn.Close()
	waitForSubscribers(t, hub, "chat:t1", 1)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, hub.Publish(context.Background(), "chat:t1", "message", map[string]string{"text": text}))
	}
	require.NoError(t, hub.Publish(context.Background(), "chat:other", "message", map[string]string{"text": "ignored"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"one", "two", "three"} {
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		assert.Equal(t, "chat:t1", env.Topic)
		assert.Equal(t, "message", env.Type)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, want, payload["text"])
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub()
	server := startServer(t, hub, "c1")

	conn, _, err := dial(t, server, "topic=task:t1&as=c1")
	require.NoError(t, err)
	waitForSubscribers(t, hub, "task:t1", 1)

	conn.Close()

	waitForSubscribers(t, hub, "task:t1", 0)
}

type revocable struct {
	mu      sync.Mutex
	allowed map[string]bool
}

func (r *revocable) CanSubscribe(_ context.Context, userID string, _ models.Role, _ TopicKind, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.allowed[userID] {
		return ErrForbidden
	}
	return nil
}

func (r *revocable) revoke(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.allowed, userID)
}

func TestHub_RecheckClosesRevokedSubscribers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	authorizer := &revocable{allowed: map[string]bool{"c1": true, "w2": true}}

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(auth.UserIDKey, c.Query("as"))
		c.Set(auth.RoleKey, models.RoleWorker)
	}, NewHandler(hub, authorizer).Subscribe)
	server := httptest.NewServer(router)
	defer server.Close()

	customer, _, err := dial(t, server, "topic=chat:t1&as=c1")
	require.NoError(t, err)
	defer customer.Close()
	loser, _, err := dial(t, server, "topic=chat:t1&as=w2")
	require.NoError(t, err)
	defer loser.Close()
	waitForSubscribers(t, hub, "chat:t1", 2)

	authorizer.revoke("w2")
	require.NoError(t, hub.Recheck(context.Background(), "chat:t1"))
	assert.Equal(t, 1, hub.Subscribers("chat:t1"))

	require.NoError(t, hub.Publish(context.Background(), "chat:t1", "message", map[string]string{"text": "after accept"}))

	_ = customer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, customer.ReadJSON(&env))
	assert.Equal(t, "message", env.Type)

	_ = loser.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = loser.ReadMessage()
	var closeErr *websocket.CloseError
	assert.ErrorAs(t, err, &closeErr)
}

func TestRecheck_RejectsInvalidTopic(t *testing.T) {
	hub := NewHub()
	assert.ErrorIs(t, hub.Recheck(context.Background(), "bogus"), ErrInvalidTopic)

	broker := NewBroker(redis.NewClient(&redis.Options{Addr: "localhost:0"}), hub)
	assert.ErrorIs(t, broker.Recheck(context.Background(), "chat:"), ErrInvalidTopic)
}

func TestHandler_Rejections(t *testing.T) {
	hub := NewHub()
	server := startServer(t, hub, "c1")

	_, resp, err := dial(t, server, "topic=chat:t1&as=stranger")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = dial(t, server, "topic=bogus&as=c1")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBroker_RelaysThroughRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer client.Close()

	hub := NewHub()
	server := startServer(t, hub, "w1")
	broker := NewBroker(client, hub)
	go func() { _ = broker.Run(ctx) }()

	conn, _, err := dial(t, server, "topic=location:w1&as=w1")
	require.NoError(t, err)
	defer conn.Close()
	waitForSubscribers(t, hub, "location:w1", 1)

	// PSubscribe is asynchronous; publish until the relay is live.
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	received := make(chan Envelope, 1)
	go func() {
		var env Envelope
		if conn.ReadJSON(&env) == nil {
			received <- env
		}
	}()

	deadline := time.After(3 * time.Second)
	for {
		require.NoError(t, broker.Publish(ctx, "location:w1", "location", map[string]float64{"latitude": 31.5}))
		select {
		case env := <-received:
			assert.Equal(t, "location:w1", env.Topic)
			return
		case <-deadline:
			t.Fatal("no message relayed")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func TestBroker_RelaysRecheck(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer client.Close()

	gin.SetMode(gin.TestMode)
	hub := NewHub()
	authorizer := &revocable{allowed: map[string]bool{"w2": true}}
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(auth.UserIDKey, c.Query("as"))
		c.Set(auth.RoleKey, models.RoleWorker)
	}, NewHandler(hub, authorizer).Subscribe)
	server := httptest.NewServer(router)
	defer server.Close()

	broker := NewBroker(client, hub)
	go func() { _ = broker.Run(ctx) }()

	conn, _, err := dial(t, server, "topic=task:t1&as=w2")
	require.NoError(t, err)
	defer conn.Close()
	waitForSubscribers(t, hub, "task:t1", 1)

	authorizer.revoke("w2")
	// PSubscribe is asynchronous; repeat until the relay is live.
	require.Eventually(t, func() bool {
		assert.NoError(t, broker.Recheck(ctx, "task:t1"))
		return hub.Subscribers("task:t1") == 0
	}, 3*time.Second, 100*time.Millisecond)
}
