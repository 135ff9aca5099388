package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"marketplace/internal/cache"
	"marketplace/internal/db"
	"marketplace/internal/matching"
	"marketplace/internal/models"
	"marketplace/internal/notification"
	"marketplace/internal/observability"
	"marketplace/internal/realtime"
	"marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const cacheTimeout = 2 * time.Second

// BidLister loads the bids placed on a task.
type BidLister interface {
	ListByTask(ctx context.Context, ex db.Executor, taskID string) ([]models.Bid, error)
}

// ProfileReader resolves user profiles.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
}

type TaskServiceInterface interface {
	PostTask(ctx context.Context, customerID string, in PostTaskInput) (*models.Task, error)
	GetTask(ctx context.Context, userID string, role models.Role, taskID string) (*models.Task, error)
	ListMine(ctx context.Context, customerID string) ([]models.Task, error)
	ListAssigned(ctx context.Context, workerID string) ([]models.Task, error)
	AvailableJobs(ctx context.Context, workerID, category string) ([]models.Task, error)
	CompleteTask(ctx context.Context, customerID, taskID string) (*models.Task, error)
	ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error)
}

type TaskService struct {
	repo     TaskRepositoryInterface
	DB       *sql.DB
	cache    cache.Store
	bids     BidLister
	users    ProfileReader
	notifier notification.Publisher
	events   realtime.Publisher
}

func NewTaskService(
	repo TaskRepositoryInterface,
	db *sql.DB,
	store cache.Store,
	bids BidLister,
	users ProfileReader,
	notifier notification.Publisher,
	events realtime.Publisher,
) TaskServiceInterface {
	return &TaskService{
		repo:     repo,
		DB:       db,
		cache:    store,
		bids:     bids,
		users:    users,
		notifier: notifier,
		events:   events,
	}
}

func (s *TaskService) PostTask(ctx context.Context, customerID string, in PostTaskInput) (*models.Task, error) {
	if !models.IsCategory(in.Category) {
		return nil, ErrInvalidCategory
	}

	customer, err := s.users.GetProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		Location:     strings.TrimSpace(in.Location),
		Budget:       in.Budget,
		ScheduledAt:  in.ScheduledAt.UTC(),
		ImageURL:     in.ImageURL,
		Status:       models.StatusPending,
		CustomerID:   customerID,
		CustomerName: customer.Base().Name,
	}

	if err := s.repo.Create(ctx, s.DB, task); err != nil {
		return nil, err
	}

	observability.GlobalMetrics.TasksPostedTotal.WithLabelValues(task.Category).Inc()
	s.invalidate(ctx, cache.CustomerTasksKey(customerID), cache.AvailableTasksKey())

	logrus.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"customer_id": customerID,
		"category":    task.Category,
	}).Info("Task posted")

	return task, nil
}

// canView: the owner, the assigned worker, admins, and any worker while the
// task is still open for bids.
func canView(t *models.Task, userID string, role models.Role) bool {
	switch {
	case role == models.RoleAdmin:
		return true
	case t.IsParticipant(userID):
		return true
	case role == models.RoleWorker && t.Status == models.StatusPending:
		return true
	}
	return false
}

func (s *TaskService) GetTask(ctx context.Context, userID string, role models.Role, taskID string) (*models.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canView(task, userID, role) {
		return nil, ErrForbidden
	}
	if role != models.RoleAdmin && task.CustomerID != userID {
		task.Bids = ownBids(task.Bids, userID)
	}
	return task, nil
}

// ownBids keeps only workerID's bids. Workers never see competing offers.
func ownBids(bids []models.Bid, workerID string) []models.Bid {
	mine := make([]models.Bid, 0, 1)
	for _, b := range bids {
		if b.WorkerID == workerID {
			mine = append(mine, b)
		}
	}
	return mine
}

// loadTask reads a task with its bids, trying the cache first.
func (s *TaskService) loadTask(ctx context.Context, taskID string) (*models.Task, error) {
	cacheKey := cache.TaskKey(taskID)

	var cached models.Task
	if s.readCache(ctx, cacheKey, "task", &cached) {
		return &cached, nil
	}

	task, err := s.repo.GetByID(ctx, s.DB, taskID)
	if err != nil {
		return nil, err
	}

	bids, err := s.bids.ListByTask(ctx, s.DB, taskID)
	if err != nil {
		return nil, err
	}
	task.Bids = bids

	s.writeCache(ctx, cacheKey, task, cache.TaskCacheTTL)
	return task, nil
}

func (s *TaskService) ListMine(ctx context.Context, customerID string) ([]models.Task, error) {
	cacheKey := cache.CustomerTasksKey(customerID)

	var tasks []models.Task
	if s.readCache(ctx, cacheKey, "customer_tasks", &tasks) {
		return tasks, nil
	}

	tasks, err := s.repo.ListByCustomer(ctx, s.DB, customerID)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, cacheKey, tasks, cache.TaskCacheTTL)
	return tasks, nil
}

func (s *TaskService) ListAssigned(ctx context.Context, workerID string) ([]models.Task, error) {
	cacheKey := cache.WorkerTasksKey(workerID)

	var tasks []models.Task
	if s.readCache(ctx, cacheKey, "worker_tasks", &tasks) {
		return tasks, nil
	}

	tasks, err := s.repo.ListByWorker(ctx, s.DB, workerID)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, cacheKey, tasks, cache.TaskCacheTTL)
	return tasks, nil
}

// AvailableJobs lists pending tasks in the worker's registered skills,
// optionally narrowed to one category.
func (s *TaskService) AvailableJobs(ctx context.Context, workerID, category string) ([]models.Task, error) {
	if category != "" && category != matching.CategoryAll && !models.IsCategory(category) {
		return nil, ErrInvalidCategory
	}

	profile, err := s.users.GetProfile(ctx, workerID)
	if err != nil {
		return nil, err
	}
	worker, ok := profile.(*models.WorkerProfile)
	if !ok {
		return nil, ErrForbidden
	}

	var pending []models.Task
	if !s.readCache(ctx, cache.AvailableTasksKey(), "available_tasks", &pending) {
		pending, err = s.repo.ListByStatus(ctx, s.DB, models.StatusPending)
		if err != nil {
			return nil, err
		}
		s.writeCache(ctx, cache.AvailableTasksKey(), pending, cache.AvailableTasksTTL)
	}

	jobs := matching.FilterBySkills(pending, worker.Skills)
	return matching.FilterByCategory(jobs, category), nil
}

// CompleteTask moves an in-progress task to completed. Only the task's
// customer may do this, and only from in-progress.
func (s *TaskService) CompleteTask(ctx context.Context, customerID, taskID string) (*models.Task, error) {
	var task *models.Task

	err := utils.WithTransaction(ctx, s.DB, func(tx *sql.Tx) error {
		t, err := s.repo.GetByID(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if t.CustomerID != customerID {
			return ErrForbidden
		}
		if !t.Status.CanTransition(models.StatusCompleted) {
			return models.ErrInvalidTransition
		}

		ok, err := s.repo.MarkCompleted(ctx, tx, taskID, customerID)
		if err != nil {
			return err
		}
		if !ok {
			observability.GlobalMetrics.TransitionConflicts.WithLabelValues("complete").Inc()
			return models.ErrInvalidTransition
		}

		t.Status = models.StatusCompleted
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.GlobalMetrics.TasksCompletedTotal.WithLabelValues(task.Category).Inc()

	keys := []string{cache.TaskKey(taskID), cache.CustomerTasksKey(customerID)}
	if task.WorkerID != nil {
		keys = append(keys, cache.WorkerTasksKey(*task.WorkerID))
	}
	s.invalidate(ctx, keys...)

	logrus.WithFields(logrus.Fields{
		"task_id":     taskID,
		"customer_id": customerID,
	}).Info("Task completed")

	notification.Notify(ctx, s.notifier, notification.NewTaskCompleted(task))
	s.publish(ctx, realtime.TaskTopic(taskID), "task_completed", task)

	return task, nil
}

func (s *TaskService) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, s.DB, status)
}

func (s *TaskService) readCache(ctx context.Context, key, keyType string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Cache read failed")
	}
	if err == nil && data != nil && json.Unmarshal(data, dest) == nil {
		observability.GlobalMetrics.CacheHitsTotal.WithLabelValues(keyType).Inc()
		logrus.Debug("cache hit for ", key)
		return true
	}

	observability.GlobalMetrics.CacheMissesTotal.WithLabelValues(keyType).Inc()
	logrus.Debug("cache miss for ", key)
	return false
}

func (s *TaskService) writeCache(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	// Set cache (ignore error, cache miss is not critical)
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		logrus.WithError(err).Warn("Failed to set cache")
	}
}

func (s *TaskService) invalidate(ctx context.Context, keys ...string) {
	cache.Invalidate(ctx, s.cache, keys...)
}

func (s *TaskService) publish(ctx context.Context, topic, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, eventType, payload); err != nil {
		logrus.WithError(err).WithField("topic", topic).Warn("Failed to publish realtime event")
	}
}
