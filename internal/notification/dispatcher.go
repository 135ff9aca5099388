package notification

import (
	"context"
	"time"

	"marketplace/internal/observability"

	"github.com/sirupsen/logrus"
)

// TokenLookup resolves a user's device push token. An empty token means the
// user has not registered a device.
type TokenLookup interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// Dispatcher delivers one event to its recipient's device.
type Dispatcher struct {
	tokens TokenLookup
	sender Sender
}

func NewDispatcher(tokens TokenLookup, sender Sender) *Dispatcher {
	return &Dispatcher{tokens: tokens, sender: sender}
}

// Deliver reports delivered=false without error when there is nothing to
// send to.
func (d *Dispatcher) Deliver(ctx context.Context, event Event) (delivered bool, err error) {
	token, err := d.tokens.PushToken(ctx, event.RecipientID)
	if err != nil {
		return false, err
	}
	if token == "" {
		logrus.WithFields(logrus.Fields{
			"type":         event.Type,
			"recipient_id": event.RecipientID,
		}).Debug("Recipient has no push token, skipping")
		observability.GlobalMetrics.NotificationsProcessedTotal.WithLabelValues(string(event.Type), "skipped").Inc()
		return false, nil
	}

	start := time.Now()
	err = d.sender.Send(ctx, PushMessage{
		To:    token,
		Sound: "default",
		Title: event.Title,
		Body:  event.Body,
		Data:  event.Data,
	})
	observability.GlobalMetrics.NotificationDeliveryLatency.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	if err != nil {
		return false, err
	}

	observability.GlobalMetrics.NotificationsProcessedTotal.WithLabelValues(string(event.Type), "sent").Inc()
	return true, nil
}
