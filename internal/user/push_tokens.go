package user

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/db"
)

// PushTokens resolves device tokens for the notification worker.
type PushTokens struct {
	repo UserRepositoryInterface
	db   db.Executor
}

func NewPushTokens(repo UserRepositoryInterface, conn *sql.DB) *PushTokens {
	return &PushTokens{repo: repo, db: conn}
}

// PushToken returns "" for unknown users so their events are skipped rather
// than retried.
func (p *PushTokens) PushToken(ctx context.Context, userID string) (string, error) {
	profile, err := p.repo.GetByID(ctx, p.db, userID)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.Base().PushToken, nil
}
