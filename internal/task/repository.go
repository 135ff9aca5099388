package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/models"

	"github.com/sirupsen/logrus"
)

type TaskRepository struct{}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, ex db.Executor, task *models.Task) error
	GetByID(ctx context.Context, ex db.Executor, id string) (*models.Task, error)
	ListByCustomer(ctx context.Context, ex db.Executor, customerID string) ([]models.Task, error)
	ListByWorker(ctx context.Context, ex db.Executor, workerID string) ([]models.Task, error)
	ListByStatus(ctx context.Context, ex db.Executor, status models.TaskStatus) ([]models.Task, error)
	MarkInProgress(ctx context.Context, ex db.Executor, id, customerID, workerID, workerName string) (bool, error)
	MarkCompleted(ctx context.Context, ex db.Executor, id, customerID string) (bool, error)
	LockPending(ctx context.Context, ex db.Executor, id string) (bool, error)
	HasActiveAssignment(ctx context.Context, ex db.Executor, customerID, workerID string) (bool, error)
}

func NewTaskRepository() TaskRepositoryInterface {
	return &TaskRepository{}
}

const taskColumns = `
	id, title, description, category, location, budget, scheduled_at,
	image_url, status, customer_id, customer_name, worker_id, worker_name,
	created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, ex db.Executor, task *models.Task) error {
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	query := `
		INSERT INTO tasks (
			id, title, description, category, location, budget, scheduled_at,
			image_url, status, customer_id, customer_name, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := ex.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Category, task.Location, task.Budget, task.ScheduledAt.UTC(),
		task.ImageURL, string(task.Status), task.CustomerID, task.CustomerName, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to create task")
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t                              models.Task
		status                         string
		imageURL, workerID, workerName sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Location, &t.Budget, &t.ScheduledAt,
		&imageURL, &status, &t.CustomerID, &t.CustomerName, &workerID, &workerName,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = models.TaskStatus(status)
	if imageURL.Valid {
		t.ImageURL = &imageURL.String
	}
	if workerID.Valid {
		t.WorkerID = &workerID.String
	}
	if workerName.Valid {
		t.WorkerName = &workerName.String
	}
	return &t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, ex db.Executor, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(ex.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) list(ctx context.Context, ex db.Executor, where string, arg string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` = $1 ORDER BY created_at DESC`

	rows, err := ex.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logrus.Error("Error scanning task row: ", err)
			continue
		}
		tasks = append(tasks, *t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *TaskRepository) ListByCustomer(ctx context.Context, ex db.Executor, customerID string) ([]models.Task, error) {
	return r.list(ctx, ex, "customer_id", customerID)
}

func (r *TaskRepository) ListByWorker(ctx context.Context, ex db.Executor, workerID string) ([]models.Task, error) {
	return r.list(ctx, ex, "worker_id", workerID)
}

func (r *TaskRepository) ListByStatus(ctx context.Context, ex db.Executor, status models.TaskStatus) ([]models.Task, error) {
	return r.list(ctx, ex, "status", string(status))
}

// MarkInProgress assigns the worker only while the task is still pending
// and owned by customerID. It reports false when no row matched.
func (r *TaskRepository) MarkInProgress(ctx context.Context, ex db.Executor, id, customerID, workerID, workerName string) (bool, error) {
	query := `
		UPDATE tasks
		SET status = $1, worker_id = $2, worker_name = $3, updated_at = $4
		WHERE id = $5 AND customer_id = $6 AND status = $7
	`
	result, err := ex.ExecContext(ctx, query,
		string(models.StatusInProgress), workerID, workerName, time.Now().UTC(),
		id, customerID, string(models.StatusPending))
	if err != nil {
		return false, err
	}
	return affectedOne(result)
}

// MarkCompleted moves an in-progress task owned by customerID to completed.
func (r *TaskRepository) MarkCompleted(ctx context.Context, ex db.Executor, id, customerID string) (bool, error) {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND customer_id = $4 AND status = $5
	`
	result, err := ex.ExecContext(ctx, query,
		string(models.StatusCompleted), time.Now().UTC(),
		id, customerID, string(models.StatusInProgress))
	if err != nil {
		return false, err
	}
	return affectedOne(result)
}

// LockPending takes the task's row lock for the rest of the transaction and
// reports whether the task is still pending. The no-op update blocks behind a
// concurrent MarkInProgress and then re-checks status against the committed
// row, which a plain SELECT does not.
func (r *TaskRepository) LockPending(ctx context.Context, ex db.Executor, id string) (bool, error) {
	result, err := ex.ExecContext(ctx,
		`UPDATE tasks SET updated_at = updated_at WHERE id = $1 AND status = $2`,
		id, string(models.StatusPending))
	if err != nil {
		return false, err
	}
	return affectedOne(result)
}

// HasActiveAssignment reports whether workerID is working an in-progress
// task for customerID.
func (r *TaskRepository) HasActiveAssignment(ctx context.Context, ex db.Executor, customerID, workerID string) (bool, error) {
	var n int
	err := ex.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE customer_id = $1 AND worker_id = $2 AND status = $3`,
		customerID, workerID, string(models.StatusInProgress)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
