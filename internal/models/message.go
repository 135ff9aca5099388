package models

import "time"

type Message struct {
	ID         string     `json:"id"`
	TaskID     string     `json:"task_id"`
	SenderID   string     `json:"sender_id"`
	Text       string     `json:"text"`
	IsCustomer bool       `json:"is_customer"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Review struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type Location struct {
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}
