package payment

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/db"
	"marketplace/internal/models"
)

// Charge is a task together with its accepted bid, if any.
type Charge struct {
	TaskID     string
	CustomerID string
	WorkerID   sql.NullString
	Status     models.TaskStatus
	BidPrice   sql.NullFloat64
}

type PaymentRepository struct{}

type PaymentRepositoryInterface interface {
	GetCharge(ctx context.Context, ex db.Executor, taskID string) (*Charge, error)
	ListPayouts(ctx context.Context, ex db.Executor, workerID string) ([]Payout, error)
}

func NewPaymentRepository() PaymentRepositoryInterface {
	return &PaymentRepository{}
}

func (r *PaymentRepository) GetCharge(ctx context.Context, ex db.Executor, taskID string) (*Charge, error) {
	query := `
		SELECT t.id, t.customer_id, t.worker_id, t.status, b.bid_price
		FROM tasks t
		LEFT JOIN bids b ON b.task_id = t.id AND b.accepted = TRUE
		WHERE t.id = $1
	`

	var c Charge
	var status string
	err := ex.QueryRowContext(ctx, query, taskID).Scan(&c.TaskID, &c.CustomerID, &c.WorkerID, &status, &c.BidPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	c.Status = models.TaskStatus(status)
	return &c, nil
}

func (r *PaymentRepository) ListPayouts(ctx context.Context, ex db.Executor, workerID string) ([]Payout, error) {
	query := `
		SELECT t.id, t.title, b.bid_price, t.updated_at
		FROM bids b
		JOIN tasks t ON t.id = b.task_id
		WHERE b.worker_id = $1 AND b.accepted = TRUE AND t.status = $2
		ORDER BY t.updated_at DESC
	`

	rows, err := ex.QueryContext(ctx, query, workerID, string(models.StatusCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := []Payout{}
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.TaskID, &p.Title, &p.Amount, &p.CompletedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
