// Package notification turns marketplace events into push notifications.
// The api publishes events to RabbitMQ; the worker delivers them.
package notification

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/models"
)

type EventType string

const (
	BidSubmitted    EventType = "bid_submitted"
	BidAccepted     EventType = "bid_accepted"
	TaskCompleted   EventType = "task_completed"
	MessageReceived EventType = "message_received"
)

type Event struct {
	Type        EventType         `json:"type"`
	RecipientID string            `json:"recipient_id"`
	TaskID      string            `json:"task_id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Publisher hands events to the delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(t EventType, recipientID, taskID, title, body string) Event {
	return Event{
		Type:        t,
		RecipientID: recipientID,
		TaskID:      taskID,
		Title:       title,
		Body:        body,
		Data: map[string]string{
			"type":    string(t),
			"task_id": taskID,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func NewBidSubmitted(task *models.Task, bid *models.Bid) Event {
	e := newEvent(BidSubmitted, task.CustomerID, task.ID,
		"New bid received",
		fmt.Sprintf("%s bid Rs. %.0f on %q", bid.WorkerName, bid.BidPrice, task.Title))
	e.Data["bid_id"] = bid.ID
	return e
}

func NewBidAccepted(task *models.Task, bid *models.Bid) Event {
	e := newEvent(BidAccepted, bid.WorkerID, task.ID,
		"Your bid was accepted",
		fmt.Sprintf("%s hired you for %q", task.CustomerName, task.Title))
	e.Data["bid_id"] = bid.ID
	return e
}

func NewTaskCompleted(task *models.Task) Event {
	recipient := ""
	if task.WorkerID != nil {
		recipient = *task.WorkerID
	}
	return newEvent(TaskCompleted, recipient, task.ID,
		"Job completed",
		fmt.Sprintf("%s marked %q as completed", task.CustomerName, task.Title))
}

func NewMessageReceived(task *models.Task, msg *models.Message, senderName, recipientID string) Event {
	body := msg.Text
	if len(body) > 100 {
		body = body[:100] + "..."
	}
	e := newEvent(MessageReceived, recipientID, task.ID,
		fmt.Sprintf("New message from %s", senderName), body)
	e.Data["message_id"] = msg.ID
	return e
}
