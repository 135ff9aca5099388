package worker

import (
	"context"
	"encoding/json"
	"testing"

	"marketplace/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, event notification.Event) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func eventBody(t *testing.T, recipient string) []byte {
	t.Helper()
	body, err := json.Marshal(notification.Event{
		Type:        notification.BidAccepted,
		RecipientID: recipient,
		TaskID:      "t1",
		Title:       "Your bid was accepted",
	})
	require.NoError(t, err)
	return body
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name       string
		body       func(t *testing.T) []byte
		retryCount int32
		delivered  bool
		err        error
		callsSend  bool
		want       outcome
	}{
		{name: "delivered", body: func(t *testing.T) []byte { return eventBody(t, "w1") }, delivered: true, callsSend: true, want: outcomeAck},
		{name: "no push token", body: func(t *testing.T) []byte { return eventBody(t, "w1") }, callsSend: true, want: outcomeAck},
		{name: "relay down retries", body: func(t *testing.T) []byte { return eventBody(t, "w1") }, err: notification.ErrRelayRejected, callsSend: true, want: outcomeRetry},
		{name: "last retry", body: func(t *testing.T) []byte { return eventBody(t, "w1") }, retryCount: MaxRetries - 1, err: assert.AnError, callsSend: true, want: outcomeRetry},
		{name: "retries exhausted", body: func(t *testing.T) []byte { return eventBody(t, "w1") }, retryCount: MaxRetries, err: assert.AnError, callsSend: true, want: outcomeDrop},
		{name: "garbage body", body: func(*testing.T) []byte { return []byte("{not json") }, want: outcomeDrop},
		{name: "missing recipient", body: func(t *testing.T) []byte { return eventBody(t, "") }, want: outcomeDrop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := new(MockDeliverer)
			if tt.callsSend {
				d.On("Deliver", mock.Anything, mock.MatchedBy(func(e notification.Event) bool {
					return e.RecipientID == "w1" && e.Type == notification.BidAccepted
				})).Return(tt.delivered, tt.err)
			}

			got := process(context.Background(), d, tt.body(t), tt.retryCount, 1)

			assert.Equal(t, tt.want, got, "got %s", got)
			if tt.callsSend {
				d.AssertExpectations(t)
			} else {
				d.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
			}
		})
	}
}
