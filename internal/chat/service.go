package chat

import (
	"context"
	"database/sql"
	"strings"

	"marketplace/internal/db"
	"marketplace/internal/models"
	"marketplace/internal/notification"
	"marketplace/internal/observability"
	"marketplace/internal/realtime"
	"marketplace/internal/task"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BidChecker reports whether a worker has bid on a task.
type BidChecker interface {
	HasBid(ctx context.Context, ex db.Executor, taskID, workerID string) (bool, error)
}

type ChatServiceInterface interface {
	Send(ctx context.Context, senderID, taskID, text string) (*models.Message, error)
	List(ctx context.Context, userID, taskID string) ([]models.Message, error)
	MarkRead(ctx context.Context, userID, messageID string) (*models.Message, error)
	Authorize(ctx context.Context, userID, taskID string) error
}

type ChatService struct {
	repo     MessageRepositoryInterface
	tasks    task.TaskRepositoryInterface
	bids     BidChecker
	users    task.ProfileReader
	DB       *sql.DB
	notifier notification.Publisher
	events   realtime.Publisher
}

func NewChatService(
	repo MessageRepositoryInterface,
	tasks task.TaskRepositoryInterface,
	bids BidChecker,
	users task.ProfileReader,
	db *sql.DB,
	notifier notification.Publisher,
	events realtime.Publisher,
) ChatServiceInterface {
	return &ChatService{
		repo:     repo,
		tasks:    tasks,
		bids:     bids,
		users:    users,
		DB:       db,
		notifier: notifier,
		events:   events,
	}
}

// participant loads the task and checks userID may use its thread: the
// customer, the assigned worker, or while the task is pending any worker
// who bid on it.
func (s *ChatService) participant(ctx context.Context, userID, taskID string) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, s.DB, taskID)
	if err != nil {
		return nil, err
	}
	if t.IsParticipant(userID) {
		return t, nil
	}
	if t.Status != models.StatusPending {
		return nil, ErrNotParticipant
	}

	ok, err := s.bids.HasBid(ctx, s.DB, taskID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return t, nil
}

func (s *ChatService) Authorize(ctx context.Context, userID, taskID string) error {
	_, err := s.participant(ctx, userID, taskID)
	return err
}

func (s *ChatService) Send(ctx context.Context, senderID, taskID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	t, err := s.participant(ctx, senderID, taskID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		SenderID:   senderID,
		Text:       text,
		IsCustomer: t.CustomerID == senderID,
	}
	if err := s.repo.Create(ctx, s.DB, msg); err != nil {
		return nil, err
	}

	observability.GlobalMetrics.MessagesSentTotal.Inc()
	s.publish(ctx, realtime.ChatTopic(taskID), "message", msg)
	s.notify(ctx, t, msg)

	return msg, nil
}

// notify pushes the message to the other side. A customer writing on a
// pending task has no single counterpart, so nothing is sent.
func (s *ChatService) notify(ctx context.Context, t *models.Task, msg *models.Message) {
	recipient := t.CustomerID
	if msg.IsCustomer {
		if t.WorkerID == nil {
			return
		}
		recipient = *t.WorkerID
	}

	senderName := "Someone"
	if p, err := s.users.GetProfile(ctx, msg.SenderID); err != nil {
		logrus.WithError(err).Warn("Failed to resolve message sender")
	} else {
		senderName = p.Base().Name
	}

	notification.Notify(ctx, s.notifier, notification.NewMessageReceived(t, msg, senderName, recipient))
}

func (s *ChatService) List(ctx context.Context, userID, taskID string) ([]models.Message, error) {
	if _, err := s.participant(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, s.DB, taskID)
}

// MarkRead flags a received message as read. Marking an already read
// message or one's own message is a no-op.
func (s *ChatService) MarkRead(ctx context.Context, userID, messageID string) (*models.Message, error) {
	msg, err := s.repo.GetByID(ctx, s.DB, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participant(ctx, userID, msg.TaskID); err != nil {
		return nil, err
	}

	changed, err := s.repo.MarkRead(ctx, s.DB, messageID, userID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return msg, nil
	}

	msg, err = s.repo.GetByID(ctx, s.DB, messageID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.ChatTopic(msg.TaskID), "message_read", msg)
	return msg, nil
}

func (s *ChatService) publish(ctx context.Context, topic, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, eventType, payload); err != nil {
		logrus.WithError(err).WithField("topic", topic).Warn("Failed to publish realtime event")
	}
}
