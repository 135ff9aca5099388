package tracking

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/models"

	"github.com/go-redis/redis/v8"
)

// LocationTTL bounds how stale a shown position can be once a worker stops
// reporting.
const LocationTTL = 10 * time.Minute

// LocationStore keeps the latest location per worker.
type LocationStore interface {
	Save(ctx context.Context, loc models.Location) error
	// Get returns nil, nil when nothing is stored.
	Get(ctx context.Context, workerID string) (*models.Location, error)
}

type RedisLocationStore struct {
	client *redis.Client
}

func NewRedisLocationStore(client *redis.Client) *RedisLocationStore {
	return &RedisLocationStore{client: client}
}

func locationKey(workerID string) string {
	return "location:worker:" + workerID
}

func (s *RedisLocationStore) Save(ctx context.Context, loc models.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, locationKey(loc.UserID), data, LocationTTL).Err()
}

func (s *RedisLocationStore) Get(ctx context.Context, workerID string) (*models.Location, error) {
	data, err := s.client.Get(ctx, locationKey(workerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc models.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
