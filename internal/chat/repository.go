package chat

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/models"

	"github.com/sirupsen/logrus"
)

type MessageRepository struct{}

type MessageRepositoryInterface interface {
	Create(ctx context.Context, ex db.Executor, msg *models.Message) error
	GetByID(ctx context.Context, ex db.Executor, id string) (*models.Message, error)
	ListByTask(ctx context.Context, ex db.Executor, taskID string) ([]models.Message, error)
	MarkRead(ctx context.Context, ex db.Executor, id, readerID string) (bool, error)
}

func NewMessageRepository() MessageRepositoryInterface {
	return &MessageRepository{}
}

const messageColumns = `id, task_id, sender_id, text, is_customer, read, read_at, created_at`

func (r *MessageRepository) Create(ctx context.Context, ex db.Executor, msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO messages (id, task_id, sender_id, text, is_customer, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	_, err := ex.ExecContext(ctx, query,
		msg.ID, msg.TaskID, msg.SenderID, msg.Text, msg.IsCustomer, msg.CreatedAt)
	if err != nil {
		logrus.WithError(err).Error("Failed to store message")
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var m models.Message
	var readAt sql.NullTime

	if err := row.Scan(&m.ID, &m.TaskID, &m.SenderID, &m.Text, &m.IsCustomer, &m.Read, &readAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	return &m, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, ex db.Executor, id string) (*models.Message, error) {
	m, err := scanMessage(ex.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByTask returns a task's thread oldest first.
func (r *MessageRepository) ListByTask(ctx context.Context, ex db.Executor, taskID string) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE task_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := ex.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			logrus.Error("Error scanning message row: ", err)
			continue
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// MarkRead sets the read flag on a message readerID did not send. It
// reports false when nothing changed.
func (r *MessageRepository) MarkRead(ctx context.Context, ex db.Executor, id, readerID string) (bool, error) {
	query := `
		UPDATE messages
		SET read = TRUE, read_at = $1
		WHERE id = $2 AND sender_id <> $3 AND read = FALSE
	`
	result, err := ex.ExecContext(ctx, query, time.Now().UTC(), id, readerID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
