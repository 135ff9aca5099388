// Package navigation models the client's screen flow as a closed state
// machine. State is a plain value and Reduce is its only update function.
package navigation

import (
	"errors"
	"fmt"

	"marketplace/internal/models"
)

var (
	ErrUnknownScreen        = errors.New("unknown screen")
	ErrUnknownAction        = errors.New("unknown action")
	ErrNotAuthenticated     = errors.New("not signed in")
	ErrAlreadyAuthenticated = errors.New("already signed in")
	ErrInvalidRole          = errors.New("invalid role")
	ErrScreenForbidden      = errors.New("screen not available for role")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrTaskRequired         = errors.New("screen requires a selected task")
	ErrBidRequired          = errors.New("screen requires a selected bid")
)

type State struct {
	Screen           Screen      `json:"screen"`
	Role             models.Role `json:"role,omitempty"`
	UserID           string      `json:"user_id,omitempty"`
	CurrentTaskID    string      `json:"current_task_id,omitempty"`
	SelectedBidID    string      `json:"selected_bid_id,omitempty"`
	SelectedWorkerID string      `json:"selected_worker_id,omitempty"`
}

type ActionType string

const (
	ActionLogin          ActionType = "login"
	ActionLogout         ActionType = "logout"
	ActionNavigate       ActionType = "navigate"
	ActionSelectTask     ActionType = "select_task"
	ActionSelectBid      ActionType = "select_bid"
	ActionClearSelection ActionType = "clear_selection"
)

type Action struct {
	Type     ActionType  `json:"type" binding:"required"`
	Screen   Screen      `json:"screen,omitempty"`
	Role     models.Role `json:"role,omitempty"`
	UserID   string      `json:"user_id,omitempty"`
	TaskID   string      `json:"task_id,omitempty"`
	BidID    string      `json:"bid_id,omitempty"`
	WorkerID string      `json:"worker_id,omitempty"`
}

func Initial() State {
	return State{Screen: CustomerSplash}
}

// Reduce applies a to s. On error the returned state equals s.
func Reduce(s State, a Action) (State, error) {
	switch a.Type {
	case ActionLogin:
		if s.Role != "" {
			return s, ErrAlreadyAuthenticated
		}
		if !a.Role.Valid() || a.UserID == "" {
			return s, ErrInvalidRole
		}
		return State{Screen: Home(a.Role), Role: a.Role, UserID: a.UserID}, nil

	case ActionLogout:
		return Initial(), nil

	case ActionNavigate:
		return navigate(s, a.Screen)

	case ActionSelectTask:
		if s.Role == "" {
			return s, ErrNotAuthenticated
		}
		if a.TaskID == "" {
			return s, ErrTaskRequired
		}
		next := s
		next.CurrentTaskID = a.TaskID
		next.SelectedBidID = ""
		next.SelectedWorkerID = ""
		return keepGuards(s, next)

	case ActionSelectBid:
		if s.Role == "" {
			return s, ErrNotAuthenticated
		}
		if s.CurrentTaskID == "" {
			return s, ErrTaskRequired
		}
		if a.BidID == "" {
			return s, ErrBidRequired
		}
		next := s
		next.SelectedBidID = a.BidID
		next.SelectedWorkerID = a.WorkerID
		return next, nil

	case ActionClearSelection:
		next := s
		next.CurrentTaskID = ""
		next.SelectedBidID = ""
		next.SelectedWorkerID = ""
		return keepGuards(s, next)
	}

	return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}

func navigate(s State, target Screen) (State, error) {
	rule, ok := screens[target]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownScreen, target)
	}
	if target == s.Screen {
		return s, nil
	}
	if !rule.audience.admits(s.Role) {
		if s.Role == "" {
			return s, ErrNotAuthenticated
		}
		return s, ErrScreenForbidden
	}

	allowed := false
	for _, next := range Allowed(s.Screen, s.Role) {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return s, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, s.Screen, target)
	}

	next := s
	next.Screen = target
	return keepGuards(s, next)
}

// checkGuards reports what the current screen of s requires but s lacks.
func checkGuards(s State) error {
	rule := screens[s.Screen]
	if rule.needsTask && s.CurrentTaskID == "" {
		return ErrTaskRequired
	}
	if rule.needsBid && s.SelectedBidID == "" {
		return ErrBidRequired
	}
	return nil
}

// keepGuards returns next unless it would leave the user on a screen whose
// selection it removed, in which case prev is returned unchanged.
func keepGuards(prev, next State) (State, error) {
	if err := checkGuards(next); err != nil {
		return prev, err
	}
	return next, nil
}
