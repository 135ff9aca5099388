package bid

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/models"

	"github.com/sirupsen/logrus"
)

type BidRepository struct{}

type BidRepositoryInterface interface {
	Create(ctx context.Context, ex db.Executor, bid *models.Bid) error
	GetByID(ctx context.Context, ex db.Executor, id string) (*models.Bid, error)
	ListByTask(ctx context.Context, ex db.Executor, taskID string) ([]models.Bid, error)
	ListByWorker(ctx context.Context, ex db.Executor, workerID string) ([]models.Bid, error)
	HasBid(ctx context.Context, ex db.Executor, taskID, workerID string) (bool, error)
	MarkAccepted(ctx context.Context, ex db.Executor, id, taskID string) (bool, error)
}

func NewBidRepository() BidRepositoryInterface {
	return &BidRepository{}
}

const bidColumns = `
	id, task_id, worker_id, worker_name, worker_photo, skill, bid_price,
	rating, distance, verified, completion_time, message, accepted,
	accepted_at, created_at`

func (r *BidRepository) Create(ctx context.Context, ex db.Executor, bid *models.Bid) error {
	bid.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO bids (
			id, task_id, worker_id, worker_name, worker_photo, skill, bid_price,
			rating, distance, verified, completion_time, message, accepted, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13)
	`

	_, err := ex.ExecContext(ctx, query,
		bid.ID, bid.TaskID, bid.WorkerID, bid.WorkerName, bid.WorkerPhoto, bid.Skill, bid.BidPrice,
		bid.Rating, bid.Distance, bid.Verified, bid.CompletionTime, bid.Message, bid.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateBid
		}
		logrus.WithError(err).Error("Failed to create bid")
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*models.Bid, error) {
	var (
		b                                         models.Bid
		photo, distance, completionTime, message sql.NullString
		acceptedAt                                sql.NullTime
	)

	err := row.Scan(
		&b.ID, &b.TaskID, &b.WorkerID, &b.WorkerName, &photo, &b.Skill, &b.BidPrice,
		&b.Rating, &distance, &b.Verified, &completionTime, &message, &b.Accepted,
		&acceptedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.WorkerPhoto = photo.String
	b.Distance = distance.String
	if completionTime.Valid {
		b.CompletionTime = &completionTime.String
	}
	if message.Valid {
		b.Message = &message.String
	}
	if acceptedAt.Valid {
		b.AcceptedAt = &acceptedAt.Time
	}
	return &b, nil
}

func (r *BidRepository) GetByID(ctx context.Context, ex db.Executor, id string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	b, err := scanBid(ex.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BidRepository) list(ctx context.Context, ex db.Executor, where string, arg string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE ` + where + ` = $1 ORDER BY created_at ASC`

	rows, err := ex.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			logrus.Error("Error scanning bid row: ", err)
			continue
		}
		bids = append(bids, *b)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListByTask returns a task's bids in submission order.
func (r *BidRepository) ListByTask(ctx context.Context, ex db.Executor, taskID string) ([]models.Bid, error) {
	return r.list(ctx, ex, "task_id", taskID)
}

func (r *BidRepository) ListByWorker(ctx context.Context, ex db.Executor, workerID string) ([]models.Bid, error) {
	return r.list(ctx, ex, "worker_id", workerID)
}

func (r *BidRepository) HasBid(ctx context.Context, ex db.Executor, taskID, workerID string) (bool, error) {
	var n int
	err := ex.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bids WHERE task_id = $1 AND worker_id = $2`,
		taskID, workerID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAccepted flips accepted once. It reports false when the bid does not
// belong to taskID or was already accepted.
func (r *BidRepository) MarkAccepted(ctx context.Context, ex db.Executor, id, taskID string) (bool, error) {
	query := `
		UPDATE bids
		SET accepted = TRUE, accepted_at = $1
		WHERE id = $2 AND task_id = $3 AND accepted = FALSE
	`
	result, err := ex.ExecContext(ctx, query, time.Now().UTC(), id, taskID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
