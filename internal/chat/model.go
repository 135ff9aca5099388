package chat

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("not a participant in this conversation")
	ErrEmptyMessage    = errors.New("message text is empty")
)

type SendMessageInput struct {
	Text string `json:"text" binding:"required,max=2000"`
}
