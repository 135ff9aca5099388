package tracking

import (
	"context"
	"sync"
	"testing"

	"marketplace/internal/db/dbtest"
	"marketplace/internal/models"
	"marketplace/internal/realtime"
	"marketplace/internal/task"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	locs map[string]models.Location
}

func (m *memoryStore) Save(_ context.Context, loc models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locs[loc.UserID] = loc
	return nil
}

func (m *memoryStore) Get(_ context.Context, workerID string) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.locs[workerID]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

type recordingEvents struct {
	topics []string
}

func (r *recordingEvents) Publish(_ context.Context, topic, _ string, _ interface{}) error {
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recordingEvents) Recheck(context.Context, string) error { return nil }

func TestUpdateAndGetLocation(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	customer := dbtest.InsertUser(t, conn, "customer", "Ayesha")
	stranger := dbtest.InsertUser(t, conn, "customer", "Sana")
	worker := dbtest.InsertUser(t, conn, "worker", "Bilal", "Plumber")
	taskID := dbtest.InsertTask(t, conn, customer, "Plumber", "in-progress", worker)

	events := &recordingEvents{}
	svc := NewTrackingService(&memoryStore{locs: map[string]models.Location{}}, task.NewTaskRepository(), conn, events)
	ctx := context.Background()

	_, err := svc.GetLocation(ctx, worker, models.RoleWorker, worker)
	assert.ErrorIs(t, err, ErrLocationNotFound)

	loc, err := svc.UpdateLocation(ctx, worker, 31.5204, 74.3587, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, loc.TaskID)
	assert.Equal(t, []string{realtime.LocationTopic(worker)}, events.topics)

	got, err := svc.GetLocation(ctx, customer, models.RoleCustomer, worker)
	require.NoError(t, err)
	assert.InDelta(t, 31.5204, got.Latitude, 1e-9)

	_, err = svc.GetLocation(ctx, stranger, models.RoleCustomer, worker)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, svc.CanView(ctx, "admin-1", models.RoleAdmin, worker))
	assert.ErrorIs(t, svc.CanView(ctx, "other-worker", models.RoleWorker, worker), ErrForbidden)
}

func TestUpdateLocation_Validation(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	customer := dbtest.InsertUser(t, conn, "customer", "Ayesha")
	worker := dbtest.InsertUser(t, conn, "worker", "Bilal", "Plumber")
	other := dbtest.InsertUser(t, conn, "worker", "Kamran", "Plumber")
	taskID := dbtest.InsertTask(t, conn, customer, "Plumber", "in-progress", other)

	svc := NewTrackingService(&memoryStore{locs: map[string]models.Location{}}, task.NewTaskRepository(), conn, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		lat     float64
		lng     float64
		taskID  string
		wantErr error
	}{
		{name: "latitude too high", lat: 90.1, lng: 0, wantErr: ErrInvalidCoordinates},
		{name: "longitude too low", lat: 0, lng: -180.5, wantErr: ErrInvalidCoordinates},
		{name: "someone else's task", lat: 10, lng: 10, taskID: taskID, wantErr: ErrForbidden},
		{name: "unknown task", lat: 10, lng: 10, taskID: "missing", wantErr: task.ErrTaskNotFound},
		{name: "edges are valid", lat: -90, lng: 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateLocation(ctx, worker, tt.lat, tt.lng, tt.taskID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRedisLocationStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer client.Close()

	store := NewRedisLocationStore(client)
	client.Del(ctx, locationKey("w-test"))
	defer client.Del(ctx, locationKey("w-test"))

	missing, err := store.Get(ctx, "w-test")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, models.Location{UserID: "w-test", Latitude: 24.86, Longitude: 67.0}))

	got, err := store.Get(ctx, "w-test")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 24.86, got.Latitude)

	ttl, err := client.TTL(ctx, locationKey("w-test")).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= LocationTTL)
}
