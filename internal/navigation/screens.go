package navigation

import "marketplace/internal/models"

type Screen string

const (
	// Entry screens, reachable only while signed out.
	CustomerSplash Screen = "customer-splash"
	CustomerLogin  Screen = "customer-login"
	WorkerLogin    Screen = "worker-login"

	CustomerDashboard Screen = "customer-dashboard"
	PostTask          Screen = "post-task"
	Bidding           Screen = "bidding"
	WorkerProfileView Screen = "worker-profile-view"
	Chat              Screen = "chat"
	JobTracking       Screen = "job-tracking"
	LiveTracking      Screen = "live-tracking"
	Payment           Screen = "payment"
	RatingReview      Screen = "rating-review"
	CustomerProfile   Screen = "customer-profile"
	CustomerMyJobs    Screen = "customer-my-jobs"

	AvailableJobs      Screen = "available-jobs"
	JobDetail          Screen = "job-detail"
	BidSubmission      Screen = "bid-submission"
	OngoingJobs        Screen = "ongoing-jobs"
	WorkerLiveTracking Screen = "worker-live-tracking"
	EarningsHistory    Screen = "earnings-history"
	WorkerProfile      Screen = "worker-profile"
	WorkerReview       Screen = "worker-review"
	WorkerMessages     Screen = "worker-messages"

	AdminDashboard  Screen = "admin-dashboard"
	UserManagement  Screen = "user-management"
	JobManagement   Screen = "job-management"
	PaymentReport   Screen = "payment-report"
	FeedbackDispute Screen = "feedback-dispute"

	PersonalInfo      Screen = "personal-info"
	EditName          Screen = "edit-name"
	EditEmail         Screen = "edit-email"
	EditPhone         Screen = "edit-phone"
	EditAddress       Screen = "edit-address"
	ChangePassword    Screen = "change-password"
	LanguageSelection Screen = "language-selection"
	HelpSupport       Screen = "help-support"
)

// audience says who may sit on a screen.
type audience int

const (
	signedOut audience = iota
	customerOnly
	workerOnly
	adminOnly
	anyRole
)

type screenRule struct {
	audience    audience
	needsTask   bool
	needsBid    bool
	transitions []Screen
}

var accountScreens = []Screen{PersonalInfo, LanguageSelection, HelpSupport, ChangePassword}

func with(base []Screen, extra ...Screen) []Screen {
	out := make([]Screen, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// screens is the closed table of screens and their outgoing edges. A signed
// in user may also always jump to their role's home screen.
var screens = map[Screen]screenRule{
	CustomerSplash: {audience: signedOut, transitions: []Screen{CustomerLogin, WorkerLogin}},
	CustomerLogin:  {audience: signedOut, transitions: []Screen{CustomerSplash, WorkerLogin}},
	WorkerLogin:    {audience: signedOut, transitions: []Screen{CustomerSplash, CustomerLogin}},

	CustomerDashboard: {audience: customerOnly, transitions: []Screen{PostTask, CustomerMyJobs, CustomerProfile, Bidding, JobTracking, Chat}},
	PostTask:          {audience: customerOnly, transitions: []Screen{CustomerMyJobs}},
	CustomerMyJobs:    {audience: customerOnly, transitions: []Screen{Bidding, JobTracking, Chat, RatingReview, PostTask}},
	Bidding:           {audience: customerOnly, needsTask: true, transitions: []Screen{WorkerProfileView, JobTracking, Chat, CustomerMyJobs, Payment}},
	WorkerProfileView: {audience: customerOnly, needsTask: true, needsBid: true, transitions: []Screen{Bidding, Chat, JobTracking}},
	Chat:              {audience: customerOnly, needsTask: true, transitions: []Screen{JobTracking, CustomerMyJobs, Bidding}},
	JobTracking:       {audience: customerOnly, needsTask: true, transitions: []Screen{LiveTracking, Chat, Payment, CustomerMyJobs}},
	LiveTracking:      {audience: customerOnly, needsTask: true, transitions: []Screen{JobTracking, Chat}},
	Payment:           {audience: customerOnly, needsTask: true, needsBid: true, transitions: []Screen{RatingReview, JobTracking}},
	RatingReview:      {audience: customerOnly, needsTask: true, transitions: []Screen{CustomerMyJobs}},
	CustomerProfile:   {audience: customerOnly, transitions: with(accountScreens, EditAddress, CustomerMyJobs)},

	AvailableJobs:      {audience: workerOnly, transitions: []Screen{JobDetail, OngoingJobs, EarningsHistory, WorkerProfile, WorkerMessages}},
	JobDetail:          {audience: workerOnly, needsTask: true, transitions: []Screen{BidSubmission, AvailableJobs, WorkerMessages}},
	BidSubmission:      {audience: workerOnly, needsTask: true, transitions: []Screen{JobDetail, AvailableJobs, OngoingJobs}},
	OngoingJobs:        {audience: workerOnly, transitions: []Screen{JobDetail, WorkerLiveTracking, WorkerMessages, WorkerReview, AvailableJobs}},
	WorkerLiveTracking: {audience: workerOnly, needsTask: true, transitions: []Screen{OngoingJobs, WorkerMessages}},
	EarningsHistory:    {audience: workerOnly, transitions: []Screen{WorkerProfile, OngoingJobs}},
	WorkerProfile:      {audience: workerOnly, transitions: with(accountScreens, EarningsHistory)},
	WorkerReview:       {audience: workerOnly, needsTask: true, transitions: []Screen{OngoingJobs}},
	WorkerMessages:     {audience: workerOnly, transitions: []Screen{OngoingJobs, JobDetail}},

	AdminDashboard:  {audience: adminOnly, transitions: with(accountScreens, UserManagement, JobManagement, PaymentReport, FeedbackDispute)},
	UserManagement:  {audience: adminOnly, transitions: []Screen{JobManagement}},
	JobManagement:   {audience: adminOnly, transitions: []Screen{UserManagement}},
	PaymentReport:   {audience: adminOnly, transitions: []Screen{FeedbackDispute}},
	FeedbackDispute: {audience: adminOnly, transitions: []Screen{PaymentReport}},

	PersonalInfo:      {audience: anyRole, transitions: []Screen{EditName, EditEmail, EditPhone, EditAddress, ChangePassword, CustomerProfile, WorkerProfile}},
	EditName:          {audience: anyRole, transitions: []Screen{PersonalInfo}},
	EditEmail:         {audience: anyRole, transitions: []Screen{PersonalInfo}},
	EditPhone:         {audience: anyRole, transitions: []Screen{PersonalInfo}},
	EditAddress:       {audience: anyRole, transitions: []Screen{PersonalInfo, CustomerProfile}},
	ChangePassword:    {audience: anyRole, transitions: []Screen{PersonalInfo, CustomerProfile, WorkerProfile}},
	LanguageSelection: {audience: anyRole, transitions: []Screen{CustomerProfile, WorkerProfile}},
	HelpSupport:       {audience: anyRole, transitions: []Screen{CustomerProfile, WorkerProfile}},
}

// Home is the landing screen for a signed-in role.
func Home(role models.Role) Screen {
	switch role {
	case models.RoleCustomer:
		return CustomerDashboard
	case models.RoleWorker:
		return AvailableJobs
	case models.RoleAdmin:
		return AdminDashboard
	}
	return CustomerSplash
}

func (s Screen) Valid() bool {
	_, ok := screens[s]
	return ok
}

func (a audience) admits(role models.Role) bool {
	switch a {
	case signedOut:
		return role == ""
	case customerOnly:
		return role == models.RoleCustomer
	case workerOnly:
		return role == models.RoleWorker
	case adminOnly:
		return role == models.RoleAdmin
	case anyRole:
		return role != ""
	}
	return false
}

// Allowed lists the screens reachable from s for role, home included.
func Allowed(s Screen, role models.Role) []Screen {
	rule, ok := screens[s]
	if !ok {
		return nil
	}

	out := []Screen{}
	seen := map[Screen]bool{}
	add := func(next Screen) {
		if seen[next] || next == s || !screens[next].audience.admits(role) {
			return
		}
		seen[next] = true
		out = append(out, next)
	}

	for _, next := range rule.transitions {
		add(next)
	}
	if role != "" {
		add(Home(role))
	}
	return out
}
