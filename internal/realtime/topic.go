// Package realtime fans out marketplace events to websocket subscribers.
// Events go through Redis pub/sub so every api instance sees them in
// publish order.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidTopic = errors.New("invalid topic")

type TopicKind string

const (
	TopicChat     TopicKind = "chat"
	TopicLocation TopicKind = "location"
	TopicTask     TopicKind = "task"
)

func ChatTopic(taskID string) string       { return string(TopicChat) + ":" + taskID }
func LocationTopic(workerID string) string { return string(TopicLocation) + ":" + workerID }
func TaskTopic(taskID string) string       { return string(TopicTask) + ":" + taskID }

// ParseTopic splits "kind:id" and validates the kind.
func ParseTopic(topic string) (TopicKind, string, error) {
	kind, id, ok := strings.Cut(topic, ":")
	if !ok || id == "" {
		return "", "", ErrInvalidTopic
	}
	switch TopicKind(kind) {
	case TopicChat, TopicLocation, TopicTask:
		return TopicKind(kind), id, nil
	}
	return "", "", ErrInvalidTopic
}

// Envelope is the frame every subscriber receives.
type Envelope struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

func encode(topic, eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Topic:   topic,
		Type:    eventType,
		Payload: raw,
		SentAt:  time.Now().UTC(),
	})
}

// Publisher sends an event to everyone subscribed to topic. Recheck asks
// every instance to re-authorize the subscribers of topic and disconnect
// those who no longer pass.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, payload interface{}) error
	Recheck(ctx context.Context, topic string) error
}
