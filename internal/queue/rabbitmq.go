package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// NotificationQueue carries domain events for push delivery.
const NotificationQueue = "notification_queue"

// RetryHeader counts redeliveries of a message published by a consumer.
const RetryHeader = "x-retry-count"

func SetupRabbitMQ(rabbitMQCfg *config.RabbitMQConfig) *amqp.Connection {
	var conn *amqp.Connection
	var err error

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(rabbitMQCfg.URL)
		if err != nil {
			logrus.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		break
	}

	if err != nil {
		logrus.Fatalf("Failed to connect to RabbitMQ after %d attempts: %v", maxRetries, err)
	}

	logrus.Info("RabbitMQ connection established successfully")
	return conn
}

func CreateChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return ch, nil
}

func DeclareQueue(ch *amqp.Channel, queueName string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}

	return q, nil
}

// PublishJSON opens a short-lived channel and publishes v as a persistent
// JSON message on queueName.
func PublishJSON(ctx context.Context, conn *amqp.Connection, queueName string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	ch, err := CreateChannel(conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}

	observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queueName).Inc()
	return nil
}

// RetryCount reads RetryHeader, tolerating the integer widths brokers and
// clients use for table values.
func RetryCount(headers amqp.Table) int32 {
	if headers == nil {
		return 0
	}
	switch v := headers[RetryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	case int16:
		return int32(v)
	case int8:
		return int32(v)
	}
	return 0
}
