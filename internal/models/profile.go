package models

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// MaxWorkerSkills caps how many categories a worker can register for.
const MaxWorkerSkills = 2

// Account holds the fields every role shares.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	PushToken      string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Profile is the closed union of CustomerProfile, WorkerProfile and
// AdminProfile, discriminated by Role.
type Profile interface {
	Role() Role
	Base() *Account
}

type CustomerProfile struct {
	Account
	Address string `json:"address,omitempty"`
}

type WorkerProfile struct {
	Account
	Skills    []string `json:"skills"`
	City      string   `json:"city,omitempty"`
	CNIC      string   `json:"cnic,omitempty"`
	CNICFront string   `json:"cnic_front,omitempty"`
	CNICBack  string   `json:"cnic_back,omitempty"`
	Verified  bool     `json:"verified"`
	Rating    float64  `json:"rating"`
	TotalJobs int      `json:"total_jobs"`
}

type AdminProfile struct {
	Account
}

func (*CustomerProfile) Role() Role { return RoleCustomer }
func (*WorkerProfile) Role() Role   { return RoleWorker }
func (*AdminProfile) Role() Role    { return RoleAdmin }

func (p *CustomerProfile) Base() *Account { return &p.Account }
func (p *WorkerProfile) Base() *Account   { return &p.Account }
func (p *AdminProfile) Base() *Account    { return &p.Account }

// HasSkill reports whether the worker is registered for category.
func (p *WorkerProfile) HasSkill(category string) bool {
	for _, s := range p.Skills {
		if s == category {
			return true
		}
	}
	return false
}

func (p *CustomerProfile) MarshalJSON() ([]byte, error) {
	type alias CustomerProfile
	return json.Marshal(struct {
		Role Role `json:"role"`
		*alias
	}{RoleCustomer, (*alias)(p)})
}

func (p *WorkerProfile) MarshalJSON() ([]byte, error) {
	type alias WorkerProfile
	return json.Marshal(struct {
		Role Role `json:"role"`
		*alias
	}{RoleWorker, (*alias)(p)})
}

func (p *AdminProfile) MarshalJSON() ([]byte, error) {
	type alias AdminProfile
	return json.Marshal(struct {
		Role Role `json:"role"`
		*alias
	}{RoleAdmin, (*alias)(p)})
}

// NewProfile returns an empty profile of the given role.
func NewProfile(role Role) (Profile, bool) {
	switch role {
	case RoleCustomer:
		return &CustomerProfile{}, true
	case RoleWorker:
		return &WorkerProfile{}, true
	case RoleAdmin:
		return &AdminProfile{}, true
	}
	return nil, false
}
