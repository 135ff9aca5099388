package notification

import (
	"context"

	"marketplace/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type QueuePublisher struct {
	conn *amqp.Connection
}

func NewQueuePublisher(conn *amqp.Connection) *QueuePublisher {
	return &QueuePublisher{conn: conn}
}

func (p *QueuePublisher) Publish(ctx context.Context, event Event) error {
	if event.RecipientID == "" {
		logrus.WithField("type", event.Type).Debug("Dropping notification without recipient")
		return nil
	}
	return queue.PublishJSON(ctx, p.conn, queue.NotificationQueue, event)
}

// Notify publishes event and logs failures. Notification problems never
// fail the request that caused them.
func Notify(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"type":         event.Type,
			"recipient_id": event.RecipientID,
			"task_id":      event.TaskID,
		}).Warn("Failed to publish notification")
	}
}
