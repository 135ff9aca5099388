package handler

import (
	"context"
	"errors"

	"marketplace/internal/chat"
	"marketplace/internal/models"
	"marketplace/internal/realtime"
	"marketplace/internal/task"
	"marketplace/internal/tracking"
)

type chatAuthorizer interface {
	Authorize(ctx context.Context, userID, taskID string) error
}

type locationViewer interface {
	CanView(ctx context.Context, viewerID string, role models.Role, workerID string) error
}

type taskReader interface {
	GetTask(ctx context.Context, userID string, role models.Role, taskID string) (*models.Task, error)
}

// topicAuthorizer applies the same access rules to websocket topics as the
// REST endpoints serving the underlying resource.
type topicAuthorizer struct {
	chat     chatAuthorizer
	tracking locationViewer
	tasks    taskReader
}

func newTopicAuthorizer(messages chatAuthorizer, locations locationViewer, tasks taskReader) *topicAuthorizer {
	return &topicAuthorizer{chat: messages, tracking: locations, tasks: tasks}
}

func (a *topicAuthorizer) CanSubscribe(ctx context.Context, userID string, role models.Role, kind realtime.TopicKind, id string) error {
	var err error
	switch kind {
	case realtime.TopicChat:
		err = a.chat.Authorize(ctx, userID, id)
	case realtime.TopicLocation:
		err = a.tracking.CanView(ctx, userID, role, id)
	case realtime.TopicTask:
		_, err = a.tasks.GetTask(ctx, userID, role, id)
	default:
		return realtime.ErrForbidden
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, tracking.ErrForbidden),
		errors.Is(err, task.ErrForbidden),
		errors.Is(err, task.ErrTaskNotFound):
		return realtime.ErrForbidden
	}
	return err
}
