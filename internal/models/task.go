package models

import (
	"errors"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

var ErrInvalidTransition = errors.New("invalid task status transition")

// CanTransition reports whether a task may move from s to next. Status only
// advances pending -> in-progress -> completed.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	default:
		return false
	}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Categories are the skills a task can request and a worker can register.
var Categories = []string{
	"Electrician",
	"Plumber",
	"Carpenter",
	"Painter",
	"AC Technician",
	"Cleaner",
	"Other",
}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Location     string     `json:"location"`
	Budget       float64    `json:"budget"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	ImageURL     *string    `json:"image_url,omitempty"`
	Status       TaskStatus `json:"status"`
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	WorkerID     *string    `json:"worker_id,omitempty"`
	WorkerName   *string    `json:"worker_name,omitempty"`
	Bids         []Bid      `json:"bids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsParticipant reports whether userID is the task's customer or its
// assigned worker.
func (t *Task) IsParticipant(userID string) bool {
	if t.CustomerID == userID {
		return true
	}
	return t.WorkerID != nil && *t.WorkerID == userID
}
