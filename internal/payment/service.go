package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/db"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrNoAcceptedBid  = errors.New("task has no accepted bid")
	ErrNotParticipant = errors.New("only the task's customer or worker can view its payment")
)

type PaymentServiceInterface interface {
	TaskSummary(ctx context.Context, userID, taskID string) (*Summary, error)
	WorkerEarnings(ctx context.Context, workerID string) (*Earnings, error)
}

type PaymentService struct {
	repo PaymentRepositoryInterface
	db   db.Executor
	now  func() time.Time
}

func NewPaymentService(repo PaymentRepositoryInterface, conn *sql.DB) PaymentServiceInterface {
	return &PaymentService{repo: repo, db: conn, now: time.Now}
}

func (s *PaymentService) TaskSummary(ctx context.Context, userID, taskID string) (*Summary, error) {
	charge, err := s.repo.GetCharge(ctx, s.db, taskID)
	if err != nil {
		return nil, err
	}
	if charge.CustomerID != userID && charge.WorkerID.String != userID {
		return nil, ErrNotParticipant
	}
	if !charge.BidPrice.Valid {
		return nil, ErrNoAcceptedBid
	}

	summary := Summarize(charge.BidPrice.Float64)
	return &summary, nil
}

func (s *PaymentService) WorkerEarnings(ctx context.Context, workerID string) (*Earnings, error) {
	payouts, err := s.repo.ListPayouts(ctx, s.db, workerID)
	if err != nil {
		return nil, err
	}

	earnings := SummarizeEarnings(payouts, s.now())
	return &earnings, nil
}
