// Package session keeps each signed-in user's navigation state on the
// server so every device resumes on the same screen.
package session

import (
	"context"

	"marketplace/internal/models"
	"marketplace/internal/navigation"

	"github.com/sirupsen/logrus"
)

// View is a state together with the screens reachable from it.
type View struct {
	State   navigation.State    `json:"state"`
	Allowed []navigation.Screen `json:"allowed"`
}

func newView(s navigation.State) View {
	return View{State: s, Allowed: navigation.Allowed(s.Screen, s.Role)}
}

type SessionServiceInterface interface {
	Current(ctx context.Context, userID string, role models.Role) (View, error)
	Apply(ctx context.Context, userID string, role models.Role, action navigation.Action) (View, error)
}

type SessionService struct {
	store Store
}

func NewSessionService(store Store) SessionServiceInterface {
	return &SessionService{store: store}
}

// load returns the stored state, or a fresh signed-in state when none is
// stored or the stored one belongs to another identity.
func (s *SessionService) load(ctx context.Context, userID string, role models.Role) (navigation.State, error) {
	stored, err := s.store.Load(ctx, userID)
	if err != nil {
		return navigation.State{}, err
	}
	if stored != nil && stored.UserID == userID && stored.Role == role {
		return *stored, nil
	}

	return navigation.Reduce(navigation.Initial(), navigation.Action{
		Type:   navigation.ActionLogin,
		Role:   role,
		UserID: userID,
	})
}

func (s *SessionService) Current(ctx context.Context, userID string, role models.Role) (View, error) {
	state, err := s.load(ctx, userID, role)
	if err != nil {
		return View{}, err
	}
	return newView(state), nil
}

// Apply reduces action against the user's state and persists the result.
// Logout clears the stored state. A rejected action leaves it untouched.
func (s *SessionService) Apply(ctx context.Context, userID string, role models.Role, action navigation.Action) (View, error) {
	state, err := s.load(ctx, userID, role)
	if err != nil {
		return View{}, err
	}

	next, err := navigation.Reduce(state, action)
	if err != nil {
		return View{}, err
	}

	if action.Type == navigation.ActionLogout {
		if err := s.store.Delete(ctx, userID); err != nil {
			return View{}, err
		}
		return newView(next), nil
	}

	if err := s.store.Save(ctx, userID, next); err != nil {
		return View{}, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"action":  action.Type,
		"screen":  next.Screen,
	}).Debug("Navigation state updated")

	return newView(next), nil
}
