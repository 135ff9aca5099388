package realtime

import (
	"context"
	"strings"

	"marketplace/internal/observability"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	channelPrefix = "realtime:"
	recheckPrefix = "realtime-recheck:"
)

// Broker publishes through Redis pub/sub and relays every message back into
// the local Hub, so all api instances reach their own subscribers.
type Broker struct {
	client *redis.Client
	hub    *Hub
}

func NewBroker(client *redis.Client, hub *Hub) *Broker {
	return &Broker{client: client, hub: hub}
}

func (b *Broker) Publish(ctx context.Context, topic, eventType string, payload interface{}) error {
	message, err := encode(topic, eventType, payload)
	if err != nil {
		return err
	}

	if err := b.client.Publish(ctx, channelPrefix+topic, message).Err(); err != nil {
		return err
	}

	kind, _, _ := ParseTopic(topic)
	observability.GlobalMetrics.RealtimeEventsPublished.WithLabelValues(string(kind)).Inc()
	return nil
}

// Recheck reaches every instance through the same subscription as events,
// so frames published after it are never delivered to a revoked client.
func (b *Broker) Recheck(ctx context.Context, topic string) error {
	if _, _, err := ParseTopic(topic); err != nil {
		return err
	}
	return b.client.Publish(ctx, recheckPrefix+topic, "").Err()
}

// Run relays Redis messages into the hub until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, channelPrefix+"*", recheckPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logrus.Info("Realtime broker subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if topic, ok := strings.CutPrefix(msg.Channel, recheckPrefix); ok {
				if err := b.hub.Recheck(ctx, topic); err != nil {
					logrus.WithError(err).WithField("topic", topic).Warn("Invalid recheck topic")
				}
				continue
			}
			topic := strings.TrimPrefix(msg.Channel, channelPrefix)
			b.hub.Broadcast(topic, []byte(msg.Payload))
		}
	}
}
