package review

import (
	"context"
	"database/sql"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/models"

	"github.com/sirupsen/logrus"
)

type ReviewRepository struct{}

type ReviewRepositoryInterface interface {
	Create(ctx context.Context, ex db.Executor, review *models.Review) error
	ListByReviewee(ctx context.Context, ex db.Executor, userID string) ([]models.Review, error)
}

func NewReviewRepository() ReviewRepositoryInterface {
	return &ReviewRepository{}
}

func (r *ReviewRepository) Create(ctx context.Context, ex db.Executor, review *models.Review) error {
	review.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reviews (id, task_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := ex.ExecContext(ctx, query,
		review.ID, review.TaskID, review.ReviewerID, review.RevieweeID,
		review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		logrus.WithError(err).Error("Failed to create review")
		return err
	}
	return nil
}

// ListByReviewee returns the reviews a user received, newest first.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, ex db.Executor, userID string) ([]models.Review, error) {
	query := `
		SELECT id, task_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
	`
	rows, err := ex.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.TaskID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &comment, &rv.CreatedAt); err != nil {
			logrus.Error("Error scanning review row: ", err)
			continue
		}
		rv.Comment = comment.String
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
