package handler

import (
	"context"
	"testing"

	"marketplace/internal/chat"
	"marketplace/internal/models"
	"marketplace/internal/realtime"
	"marketplace/internal/task"
	"marketplace/internal/tracking"

	"github.com/stretchr/testify/assert"
)

type stubChat struct{ err error }

func (s stubChat) Authorize(context.Context, string, string) error { return s.err }

type stubTracking struct{ err error }

func (s stubTracking) CanView(context.Context, string, models.Role, string) error { return s.err }

type stubTasks struct{ err error }

func (s stubTasks) GetTask(_ context.Context, _ string, _ models.Role, id string) (*models.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Task{ID: id}, nil
}

func TestTopicAuthorizer(t *testing.T) {
	tests := []struct {
		name    string
		a       *topicAuthorizer
		kind    realtime.TopicKind
		wantErr error
	}{
		{
			name: "chat participant",
			a:    newTopicAuthorizer(stubChat{}, stubTracking{}, stubTasks{}),
			kind: realtime.TopicChat,
		},
		{
			name:    "chat outsider",
			a:       newTopicAuthorizer(stubChat{err: chat.ErrNotParticipant}, stubTracking{}, stubTasks{}),
			kind:    realtime.TopicChat,
			wantErr: realtime.ErrForbidden,
		},
		{
			name:    "chat on missing task",
			a:       newTopicAuthorizer(stubChat{err: task.ErrTaskNotFound}, stubTracking{}, stubTasks{}),
			kind:    realtime.TopicChat,
			wantErr: realtime.ErrForbidden,
		},
		{
			name:    "location without assignment",
			a:       newTopicAuthorizer(stubChat{}, stubTracking{err: tracking.ErrForbidden}, stubTasks{}),
			kind:    realtime.TopicLocation,
			wantErr: realtime.ErrForbidden,
		},
		{
			name: "task visible",
			a:    newTopicAuthorizer(stubChat{}, stubTracking{}, stubTasks{}),
			kind: realtime.TopicTask,
		},
		{
			name:    "task hidden",
			a:       newTopicAuthorizer(stubChat{}, stubTracking{}, stubTasks{err: task.ErrForbidden}),
			kind:    realtime.TopicTask,
			wantErr: realtime.ErrForbidden,
		},
		{
			name:    "storage failure passes through",
			a:       newTopicAuthorizer(stubChat{}, stubTracking{}, stubTasks{err: assert.AnError}),
			kind:    realtime.TopicTask,
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.CanSubscribe(context.Background(), "u1", models.RoleCustomer, tt.kind, "id1")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
