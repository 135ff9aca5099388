package task

import (
	"errors"
	"time"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrForbidden       = errors.New("access denied")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidStatus   = errors.New("unknown task status")
)

type PostTaskInput struct {
	Title       string    `json:"title" binding:"required,min=3,max=120"`
	Description string    `json:"description" binding:"required,max=2000"`
	Category    string    `json:"category" binding:"required"`
	Location    string    `json:"location" binding:"required,max=255"`
	Budget      float64   `json:"budget" binding:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	ImageURL    *string   `json:"image_url" binding:"omitempty,url"`
}
