package session

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/navigation"

	"github.com/go-redis/redis/v8"
)

// SessionTTL matches the refresh token lifetime; an idle session past it
// starts over on the role's home screen.
const SessionTTL = 7 * 24 * time.Hour

// Store persists one navigation state per user.
type Store interface {
	// Load returns nil, nil when the user has no stored state.
	Load(ctx context.Context, userID string) (*navigation.State, error)
	Save(ctx context.Context, userID string, state navigation.State) error
	Delete(ctx context.Context, userID string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(userID string) string {
	return "session:user:" + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*navigation.State, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state navigation.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, state navigation.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(userID), data, SessionTTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
