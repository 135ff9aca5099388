package worker

import (
	"context"
	"encoding/json"
	"errors"

	"marketplace/internal/notification"
	"marketplace/internal/observability"

	"github.com/sirupsen/logrus"
)

// MaxRetries is how many times a failed delivery is republished before it
// is dropped.
const MaxRetries = 3

// Deliverer sends one event to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, event notification.Event) (bool, error)
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeDrop
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeRetry:
		return "retry"
	}
	return "drop"
}

// process decodes and delivers one message body and decides what to do with
// the delivery.
func process(ctx context.Context, d Deliverer, body []byte, retryCount int32, workerID int) outcome {
	var event notification.Event
	if err := json.Unmarshal(body, &event); err != nil {
		logrus.WithError(err).Error("Invalid notification payload")
		observability.GlobalMetrics.NotificationsFailedTotal.WithLabelValues("unknown", "decode_error").Inc()
		return outcomeDrop
	}

	log := logrus.WithFields(logrus.Fields{
		"worker":       workerID,
		"type":         event.Type,
		"recipient_id": event.RecipientID,
		"task_id":      event.TaskID,
		"retry":        retryCount,
	})

	if event.RecipientID == "" {
		log.Warn("Notification without recipient")
		return outcomeDrop
	}

	delivered, err := d.Deliver(ctx, event)
	if err != nil {
		errorType := "delivery_error"
		if errors.Is(err, notification.ErrRelayRejected) {
			errorType = "relay_rejected"
		}
		observability.GlobalMetrics.NotificationsFailedTotal.WithLabelValues(string(event.Type), errorType).Inc()

		if retryCount >= MaxRetries {
			log.WithError(err).Error("Notification failed, max retries reached")
			observability.GlobalMetrics.NotificationsProcessedTotal.WithLabelValues(string(event.Type), "failed").Inc()
			return outcomeDrop
		}
		log.WithError(err).Warnf("Notification failed, requeuing (retry %d/%d)", retryCount+1, MaxRetries)
		return outcomeRetry
	}

	if delivered {
		log.Info("Notification delivered")
	}
	return outcomeAck
}
