package bid

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"marketplace/internal/cache"
	"marketplace/internal/matching"
	"marketplace/internal/models"
	"marketplace/internal/notification"
	"marketplace/internal/observability"
	"marketplace/internal/realtime"
	"marketplace/internal/task"
	"marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BidServiceInterface interface {
	SubmitBid(ctx context.Context, workerID, taskID string, in SubmitBidInput) (*models.Bid, error)
	ListBids(ctx context.Context, userID string, role models.Role, taskID string, sortKey matching.SortKey) ([]models.Bid, error)
	AcceptBid(ctx context.Context, customerID, taskID, bidID string) (*Acceptance, error)
	ListMine(ctx context.Context, workerID string) ([]models.Bid, error)
}

type BidService struct {
	repo     BidRepositoryInterface
	tasks    task.TaskRepositoryInterface
	DB       *sql.DB
	cache    cache.Store
	users    task.ProfileReader
	notifier notification.Publisher
	events   realtime.Publisher
}

func NewBidService(
	repo BidRepositoryInterface,
	tasks task.TaskRepositoryInterface,
	db *sql.DB,
	store cache.Store,
	users task.ProfileReader,
	notifier notification.Publisher,
	events realtime.Publisher,
) BidServiceInterface {
	return &BidService{
		repo:     repo,
		tasks:    tasks,
		DB:       db,
		cache:    store,
		users:    users,
		notifier: notifier,
		events:   events,
	}
}

// SubmitBid places a worker's bid on a pending task in one of the worker's
// registered categories. Worker name, photo, rating and verification are
// snapshotted from the profile.
func (s *BidService) SubmitBid(ctx context.Context, workerID, taskID string, in SubmitBidInput) (*models.Bid, error) {
	profile, err := s.users.GetProfile(ctx, workerID)
	if err != nil {
		return nil, err
	}
	worker, ok := profile.(*models.WorkerProfile)
	if !ok {
		return nil, ErrForbidden
	}

	bid := &models.Bid{
		ID:             uuid.NewString(),
		TaskID:         taskID,
		WorkerID:       workerID,
		WorkerName:     worker.Name,
		WorkerPhoto:    worker.ProfilePicture,
		BidPrice:       in.BidPrice,
		Rating:         worker.Rating,
		Distance:       strings.TrimSpace(in.Distance),
		Verified:       worker.Verified,
		CompletionTime: in.CompletionTime,
		Message:        in.Message,
	}

	var t *models.Task
	err = utils.WithTransaction(ctx, s.DB, func(tx *sql.Tx) error {
		found, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return err
		}
		t = found

		pending, err := s.tasks.LockPending(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if !pending {
			return ErrTaskNotPending
		}
		if !worker.HasSkill(t.Category) {
			return ErrSkillMismatch
		}
		bid.Skill = t.Category
		return s.repo.Create(ctx, tx, bid)
	})
	if err != nil {
		return nil, err
	}

	observability.GlobalMetrics.BidsSubmittedTotal.WithLabelValues(t.Category).Inc()
	cache.Invalidate(ctx, s.cache, cache.TaskKey(taskID))

	logrus.WithFields(logrus.Fields{
		"bid_id":    bid.ID,
		"task_id":   taskID,
		"worker_id": workerID,
		"price":     bid.BidPrice,
	}).Info("Bid submitted")

	notification.Notify(ctx, s.notifier, notification.NewBidSubmitted(t, bid))
	// Task subscribers include competing workers, so only the customer's
	// REST view carries prices.
	s.publish(ctx, realtime.TaskTopic(taskID), "bid_submitted", BidEvent{
		TaskID: taskID,
		BidID:  bid.ID,
		Status: t.Status,
	})

	return bid, nil
}

// ListBids returns a task's bids to its customer (or an admin), ordered by
// sortKey. An empty key keeps submission order.
func (s *BidService) ListBids(ctx context.Context, userID string, role models.Role, taskID string, sortKey matching.SortKey) ([]models.Bid, error) {
	if sortKey != "" && !sortKey.Valid() {
		return nil, ErrInvalidSortOrder
	}

	t, err := s.tasks.GetByID(ctx, s.DB, taskID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && t.CustomerID != userID {
		return nil, ErrForbidden
	}

	bids, err := s.repo.ListByTask(ctx, s.DB, taskID)
	if err != nil {
		return nil, err
	}
	return matching.SortBids(bids, sortKey), nil
}

// AcceptBid assigns the bid's worker to the task and marks the bid accepted
// in one transaction. Either both writes land or neither does.
func (s *BidService) AcceptBid(ctx context.Context, customerID, taskID, bidID string) (*Acceptance, error) {
	var result Acceptance

	err := utils.WithTransaction(ctx, s.DB, func(tx *sql.Tx) error {
		b, err := s.repo.GetByID(ctx, tx, bidID)
		if err != nil {
			return err
		}
		if b.TaskID != taskID {
			return ErrBidNotFound
		}

		ok, err := s.tasks.MarkInProgress(ctx, tx, taskID, customerID, b.WorkerID, b.WorkerName)
		if err != nil {
			return err
		}
		if !ok {
			return s.explainTaskConflict(ctx, tx, customerID, taskID)
		}

		ok, err = s.repo.MarkAccepted(ctx, tx, bidID, taskID)
		if err != nil {
			return err
		}
		if !ok {
			observability.GlobalMetrics.TransitionConflicts.WithLabelValues("accept").Inc()
			return ErrAlreadyAccepted
		}

		if result.Task, err = s.tasks.GetByID(ctx, tx, taskID); err != nil {
			return err
		}
		result.Bid, err = s.repo.GetByID(ctx, tx, bidID)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.GlobalMetrics.BidsAcceptedTotal.WithLabelValues(result.Task.Category).Inc()
	cache.Invalidate(ctx, s.cache,
		cache.TaskKey(taskID),
		cache.AvailableTasksKey(),
		cache.CustomerTasksKey(customerID),
		cache.WorkerTasksKey(result.Bid.WorkerID),
	)

	logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"bid_id":    bidID,
		"worker_id": result.Bid.WorkerID,
	}).Info("Bid accepted")

	notification.Notify(ctx, s.notifier, notification.NewBidAccepted(result.Task, result.Bid))
	s.publish(ctx, realtime.TaskTopic(taskID), "bid_accepted", BidEvent{
		TaskID:   taskID,
		BidID:    bidID,
		Status:   result.Task.Status,
		WorkerID: result.Bid.WorkerID,
	})
	// Losing bidders were allowed on these topics only while the task was
	// pending.
	s.recheck(ctx, realtime.ChatTopic(taskID))
	s.recheck(ctx, realtime.TaskTopic(taskID))

	return &result, nil
}

// explainTaskConflict turns a zero-row task update into the matching error.
func (s *BidService) explainTaskConflict(ctx context.Context, tx *sql.Tx, customerID, taskID string) error {
	t, err := s.tasks.GetByID(ctx, tx, taskID)
	if err != nil {
		return err
	}
	if t.CustomerID != customerID {
		return ErrForbidden
	}
	observability.GlobalMetrics.TransitionConflicts.WithLabelValues("accept").Inc()
	return ErrTaskNotPending
}

func (s *BidService) ListMine(ctx context.Context, workerID string) ([]models.Bid, error) {
	return s.repo.ListByWorker(ctx, s.DB, workerID)
}

func (s *BidService) publish(ctx context.Context, topic, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, eventType, payload); err != nil {
		logrus.WithError(err).WithField("topic", topic).Warn("Failed to publish realtime event")
	}
}

func (s *BidService) recheck(ctx context.Context, topic string) {
	if s.events == nil {
		return
	}
	if err := s.events.Recheck(ctx, topic); err != nil {
		logrus.WithError(err).WithField("topic", topic).Warn("Failed to recheck realtime subscribers")
	}
}

// IsConflict reports whether err is one of the bid conflicts callers map to
// 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateBid) ||
		errors.Is(err, ErrTaskNotPending) ||
		errors.Is(err, ErrAlreadyAccepted)
}
