package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketplace/internal/config"
)

const publishTimeout = 5 * time.Second

// ErrRelayRejected is returned when the push relay answers with errors in
// an otherwise successful response.
var ErrRelayRejected = errors.New("push relay rejected notification")

// PushMessage is the relay's request body.
type PushMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type relayResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type Sender interface {
	Send(ctx context.Context, msg PushMessage) error
}

// RelaySender posts push messages to an Expo-compatible relay.
type RelaySender struct {
	url    string
	client *http.Client
}

func NewRelaySender(cfg *config.PushConfig) *RelaySender {
	return &RelaySender{
		url:    cfg.RelayURL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *RelaySender) Send(ctx context.Context, msg PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push relay request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("push relay response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var result relayResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("push relay response: %w", err)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrRelayRejected, result.Errors[0].Message)
	}
	if result.Data.Status == "error" {
		return fmt.Errorf("%w: %s", ErrRelayRejected, result.Data.Message)
	}
	return nil
}
