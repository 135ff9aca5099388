package review

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"marketplace/internal/models"
	"marketplace/internal/observability"
	"marketplace/internal/task"
	"marketplace/internal/user"
	"marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReviewServiceInterface interface {
	Submit(ctx context.Context, reviewerID, taskID string, in SubmitReviewInput) (*models.Review, error)
	ListForUser(ctx context.Context, userID string) ([]models.Review, error)
}

type ReviewService struct {
	repo  ReviewRepositoryInterface
	tasks task.TaskRepositoryInterface
	users user.UserRepositoryInterface
	DB    *sql.DB
}

func NewReviewService(
	repo ReviewRepositoryInterface,
	tasks task.TaskRepositoryInterface,
	users user.UserRepositoryInterface,
	db *sql.DB,
) ReviewServiceInterface {
	return &ReviewService{
		repo:  repo,
		tasks: tasks,
		users: users,
		DB:    db,
	}
}

// Submit records one party's review of the other on a completed task. A
// customer's review of the worker is folded into the worker's rating in the
// same transaction.
func (s *ReviewService) Submit(ctx context.Context, reviewerID, taskID string, in SubmitReviewInput) (*models.Review, error) {
	review := &models.Review{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		ReviewerID: reviewerID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}

	err := utils.WithTransaction(ctx, s.DB, func(tx *sql.Tx) error {
		t, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if !t.IsParticipant(reviewerID) || t.WorkerID == nil {
			return ErrForbidden
		}
		if t.Status != models.StatusCompleted {
			return ErrTaskNotCompleted
		}

		byCustomer := t.CustomerID == reviewerID
		if byCustomer {
			review.RevieweeID = *t.WorkerID
		} else {
			review.RevieweeID = t.CustomerID
		}

		if err := s.repo.Create(ctx, tx, review); err != nil {
			return err
		}
		if byCustomer {
			return s.users.ApplyRating(ctx, tx, review.RevieweeID, review.Rating)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.GlobalMetrics.ReviewsSubmittedTotal.WithLabelValues(strconv.Itoa(review.Rating)).Inc()
	logrus.WithFields(logrus.Fields{
		"task_id":     taskID,
		"reviewer_id": reviewerID,
		"reviewee_id": review.RevieweeID,
		"rating":      review.Rating,
	}).Info("Review submitted")

	return review, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.repo.ListByReviewee(ctx, s.DB, userID)
}
