package models

import "time"

type Bid struct {
	ID             string     `json:"id"`
	TaskID         string     `json:"task_id"`
	WorkerID       string     `json:"worker_id"`
	WorkerName     string     `json:"worker_name"`
	WorkerPhoto    string     `json:"worker_photo"`
	Skill          string     `json:"skill"`
	BidPrice       float64    `json:"bid_price"`
	Rating         float64    `json:"rating"`
	Distance       string     `json:"distance"`
	Verified       bool       `json:"verified"`
	CompletionTime *string    `json:"completion_time,omitempty"`
	Message        *string    `json:"message,omitempty"`
	Accepted       bool       `json:"accepted"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
