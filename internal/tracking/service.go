// Package tracking keeps each worker's latest reported position and fans it
// out to the customers following them.
package tracking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/realtime"
	"marketplace/internal/task"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrLocationNotFound   = errors.New("no recent location for worker")
	ErrForbidden          = errors.New("not allowed to view this location")
)

type UpdateLocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	TaskID    string   `json:"task_id"`
}

type TrackingServiceInterface interface {
	UpdateLocation(ctx context.Context, workerID string, lat, lng float64, taskID string) (*models.Location, error)
	GetLocation(ctx context.Context, viewerID string, role models.Role, workerID string) (*models.Location, error)
	CanView(ctx context.Context, viewerID string, role models.Role, workerID string) error
}

type TrackingService struct {
	store  LocationStore
	tasks  task.TaskRepositoryInterface
	DB     *sql.DB
	events realtime.Publisher
}

func NewTrackingService(store LocationStore, tasks task.TaskRepositoryInterface, db *sql.DB, events realtime.Publisher) TrackingServiceInterface {
	return &TrackingService{
		store:  store,
		tasks:  tasks,
		DB:     db,
		events: events,
	}
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// UpdateLocation stores the worker's position and publishes it on the
// worker's location topic. A task id, when given, must be one the worker is
// assigned to.
func (s *TrackingService) UpdateLocation(ctx context.Context, workerID string, lat, lng float64, taskID string) (*models.Location, error) {
	if !validCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}

	if taskID != "" {
		t, err := s.tasks.GetByID(ctx, s.DB, taskID)
		if err != nil {
			return nil, err
		}
		if t.WorkerID == nil || *t.WorkerID != workerID {
			return nil, ErrForbidden
		}
	}

	loc := models.Location{
		UserID:    workerID,
		TaskID:    taskID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, loc); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, realtime.LocationTopic(workerID), "location", loc); err != nil {
			logrus.WithError(err).WithField("worker_id", workerID).Warn("Failed to publish location")
		}
	}
	return &loc, nil
}

// CanView allows the worker themself, admins, and customers with an
// in-progress task assigned to the worker.
func (s *TrackingService) CanView(ctx context.Context, viewerID string, role models.Role, workerID string) error {
	if viewerID == workerID || role == models.RoleAdmin {
		return nil
	}
	if role != models.RoleCustomer {
		return ErrForbidden
	}

	ok, err := s.tasks.HasActiveAssignment(ctx, s.DB, viewerID, workerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *TrackingService) GetLocation(ctx context.Context, viewerID string, role models.Role, workerID string) (*models.Location, error) {
	if err := s.CanView(ctx, viewerID, role, workerID); err != nil {
		return nil, err
	}

	loc, err := s.store.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}
