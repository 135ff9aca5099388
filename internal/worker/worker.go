package worker

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/observability"
	"marketplace/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const deliverTimeout = 15 * time.Second

func republishWithRetry(ctx context.Context, ch *amqp.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Create new headers with incremented retry count
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[queue.RetryHeader] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}

// StartWorker consumes the notification queue until ctx is cancelled or the
// broker closes the channel.
func StartWorker(ctx context.Context, conn *amqp.Connection, d Deliverer, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d failed to open channel: %w", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", id, err)
	}

	msgs, err := ch.Consume(
		queue.NotificationQueue,
		fmt.Sprintf("notification-worker-%d", id),
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", id, err)
	}

	logrus.Infof("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			handleDelivery(ctx, ch, &msg, d, id)
		}
	}
}

func handleDelivery(ctx context.Context, ch *amqp.Channel, msg *amqp.Delivery, d Deliverer, id int) {
	observability.GlobalMetrics.QueueMessagesConsumed.WithLabelValues(queue.NotificationQueue).Inc()

	retryCount := queue.RetryCount(msg.Headers)

	deliverCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
	result := process(deliverCtx, d, msg.Body, retryCount, id)
	cancel()

	switch result {
	case outcomeAck:
		_ = msg.Ack(false)

	case outcomeRetry:
		if err := republishWithRetry(ctx, ch, msg, retryCount+1); err != nil {
			logrus.WithError(err).Error("Failed to republish message")
			_ = msg.Nack(false, false)
			return
		}
		observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.NotificationQueue).Inc()
		_ = msg.Ack(false)

	case outcomeDrop:
		_ = msg.Nack(false, false)
	}
}
