package navigation

import (
	"testing"

	"marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	next, err := Reduce(s, a)
	require.NoError(t, err)
	return next
}

func loggedIn(t *testing.T, role models.Role) State {
	t.Helper()
	return mustReduce(t, Initial(), Action{Type: ActionLogin, Role: role, UserID: "u1"})
}

func TestScreenTable_IsClosed(t *testing.T) {
	for screen, rule := range screens {
		for _, next := range rule.transitions {
			assert.True(t, next.Valid(), "%s links to unknown screen %s", screen, next)
		}
	}
	for _, role := range []models.Role{models.RoleCustomer, models.RoleWorker, models.RoleAdmin} {
		assert.True(t, Home(role).Valid())
		assert.True(t, screens[Home(role)].audience.admits(role))
	}
}

func TestLogin_LandsOnRoleHome(t *testing.T) {
	assert.Equal(t, CustomerDashboard, loggedIn(t, models.RoleCustomer).Screen)
	assert.Equal(t, AvailableJobs, loggedIn(t, models.RoleWorker).Screen)
	assert.Equal(t, AdminDashboard, loggedIn(t, models.RoleAdmin).Screen)
}

func TestLogin_Twice(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)

	_, err := Reduce(s, Action{Type: ActionLogin, Role: models.RoleWorker, UserID: "u2"})

	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)
}

func TestLogin_InvalidRole(t *testing.T) {
	_, err := Reduce(Initial(), Action{Type: ActionLogin, Role: "guest", UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestNavigate_SignedOut(t *testing.T) {
	s := mustReduce(t, Initial(), Action{Type: ActionNavigate, Screen: WorkerLogin})
	assert.Equal(t, WorkerLogin, s.Screen)

	_, err := Reduce(s, Action{Type: ActionNavigate, Screen: AvailableJobs})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestNavigate_CustomerBidFlow(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)

	_, err := Reduce(s, Action{Type: ActionNavigate, Screen: Bidding})
	assert.ErrorIs(t, err, ErrTaskRequired)

	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t1"})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: Bidding})
	assert.Equal(t, Bidding, s.Screen)

	_, err = Reduce(s, Action{Type: ActionNavigate, Screen: Payment})
	assert.ErrorIs(t, err, ErrBidRequired)

	s = mustReduce(t, s, Action{Type: ActionSelectBid, BidID: "b1", WorkerID: "w1"})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: Payment})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: RatingReview})

	assert.Equal(t, RatingReview, s.Screen)
	assert.Equal(t, "t1", s.CurrentTaskID)
	assert.Equal(t, "b1", s.SelectedBidID)
}

func TestNavigate_RoleForbidden(t *testing.T) {
	s := loggedIn(t, models.RoleWorker)

	_, err := Reduce(s, Action{Type: ActionNavigate, Screen: PostTask})

	assert.ErrorIs(t, err, ErrScreenForbidden)
}

func TestNavigate_EdgeMissing(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: PostTask})

	_, err := Reduce(s, Action{Type: ActionNavigate, Screen: CustomerProfile})

	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
}

func TestNavigate_HomeAlwaysReachable(t *testing.T) {
	s := loggedIn(t, models.RoleWorker)
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: WorkerProfile})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: HelpSupport})

	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: AvailableJobs})

	assert.Equal(t, AvailableJobs, s.Screen)
}

func TestNavigate_UnknownScreen(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)

	next, err := Reduce(s, Action{Type: ActionNavigate, Screen: "settings"})

	assert.ErrorIs(t, err, ErrUnknownScreen)
	assert.Equal(t, s, next)
}

func TestSelectTask_ClearsBid(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)
	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t1"})
	s = mustReduce(t, s, Action{Type: ActionSelectBid, BidID: "b1"})

	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t2"})

	assert.Equal(t, "t2", s.CurrentTaskID)
	assert.Empty(t, s.SelectedBidID)
}

func onPayment(t *testing.T) State {
	t.Helper()
	s := loggedIn(t, models.RoleCustomer)
	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t1"})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: Bidding})
	s = mustReduce(t, s, Action{Type: ActionSelectBid, BidID: "b1", WorkerID: "w1"})
	return mustReduce(t, s, Action{Type: ActionNavigate, Screen: Payment})
}

func TestSelection_CannotStripGuardedScreen(t *testing.T) {
	bidding := loggedIn(t, models.RoleCustomer)
	bidding = mustReduce(t, bidding, Action{Type: ActionSelectTask, TaskID: "t1"})
	bidding = mustReduce(t, bidding, Action{Type: ActionNavigate, Screen: Bidding})

	tests := []struct {
		name    string
		from    State
		action  Action
		wantErr error
	}{
		{name: "clear on payment", from: onPayment(t), action: Action{Type: ActionClearSelection}, wantErr: ErrTaskRequired},
		{name: "new task on payment drops bid", from: onPayment(t), action: Action{Type: ActionSelectTask, TaskID: "t2"}, wantErr: ErrBidRequired},
		{name: "clear on bidding", from: bidding, action: Action{Type: ActionClearSelection}, wantErr: ErrTaskRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(tt.from, tt.action)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestSelection_AllowedWhereGuardsHold(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)
	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t1"})
	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: Bidding})

	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t2"})
	assert.Equal(t, Bidding, s.Screen)
	assert.Equal(t, "t2", s.CurrentTaskID)

	s = mustReduce(t, s, Action{Type: ActionNavigate, Screen: CustomerMyJobs})
	s = mustReduce(t, s, Action{Type: ActionClearSelection})
	assert.Empty(t, s.CurrentTaskID)
}

func TestSelectBid_WithoutTask(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)

	_, err := Reduce(s, Action{Type: ActionSelectBid, BidID: "b1"})

	assert.ErrorIs(t, err, ErrTaskRequired)
}

func TestLogout_Resets(t *testing.T) {
	s := loggedIn(t, models.RoleCustomer)
	s = mustReduce(t, s, Action{Type: ActionSelectTask, TaskID: "t1"})

	s = mustReduce(t, s, Action{Type: ActionLogout})

	assert.Equal(t, Initial(), s)
}

func TestUnknownAction(t *testing.T) {
	_, err := Reduce(Initial(), Action{Type: "jump"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestAllowed_ExcludesOtherRoles(t *testing.T) {
	for _, next := range Allowed(PersonalInfo, models.RoleWorker) {
		assert.NotEqual(t, CustomerProfile, next)
	}
	assert.Contains(t, Allowed(PersonalInfo, models.RoleWorker), WorkerProfile)
}
