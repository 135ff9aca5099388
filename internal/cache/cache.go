package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const TaskCacheTTL = 1 * time.Hour

// AvailableTasksTTL is short because every new task or acceptance changes
// the open job board.
const AvailableTasksTTL = 1 * time.Minute

// Store is the subset of cache behaviour services depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns nil, nil on a cache miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func TaskKey(taskID string) string {
	return fmt.Sprintf("task:%s", taskID)
}

func CustomerTasksKey(customerID string) string {
	return fmt.Sprintf("tasks:customer:%s", customerID)
}

func WorkerTasksKey(workerID string) string {
	return fmt.Sprintf("tasks:worker:%s", workerID)
}

// AvailableTasksKey caches the full pending list; skill filtering happens
// per caller after the read.
func AvailableTasksKey() string {
	return "tasks:available"
}

// Invalidate deletes keys with a short timeout. A nil store or a failed
// delete is logged and otherwise ignored.
func Invalidate(ctx context.Context, store Store, keys ...string) {
	if store == nil || len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := store.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("Failed to invalidate cache")
	}
}
