package bid

import (
	"errors"

	"marketplace/internal/models"
)

var (
	ErrBidNotFound      = errors.New("bid not found")
	ErrDuplicateBid     = errors.New("worker already bid on this task")
	ErrTaskNotPending   = errors.New("task is no longer open for bids")
	ErrSkillMismatch    = errors.New("task category is not one of the worker's skills")
	ErrAlreadyAccepted  = errors.New("bid already accepted")
	ErrForbidden        = errors.New("access denied")
	ErrInvalidSortOrder = errors.New("unknown sort order")
)

type SubmitBidInput struct {
	BidPrice       float64 `json:"bid_price" binding:"required,gt=0"`
	Distance       string  `json:"distance" binding:"max=32"`
	CompletionTime *string `json:"completion_time" binding:"omitempty,max=64"`
	Message        *string `json:"message" binding:"omitempty,max=500"`
}

// BidEvent is the realtime frame for bid activity on a task topic.
type BidEvent struct {
	TaskID   string            `json:"task_id"`
	BidID    string            `json:"bid_id"`
	Status   models.TaskStatus `json:"status"`
	WorkerID string            `json:"worker_id,omitempty"`
}

// Acceptance is the outcome of accepting a bid: the task now in progress
// and the accepted bid.
type Acceptance struct {
	Task *models.Task `json:"task"`
	Bid  *models.Bid  `json:"bid"`
}
