package user

import (
	"errors"

	"marketplace/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be customer or worker")
	ErrInvalidSkills      = errors.New("workers need one or two known skills")
	ErrCNICRequired       = errors.New("workers must provide a CNIC number")
	ErrNotAWorker         = errors.New("user is not a worker")
)

// Credentials is what login needs; it never leaves the service layer.
type Credentials struct {
	ID       string
	Role     models.Role
	Password string
}

type RegisterInput struct {
	Name      string      `json:"name" binding:"required,min=2,max=100"`
	Email     string      `json:"email" binding:"required,email"`
	Phone     string      `json:"phone" binding:"omitempty,max=20"`
	Password  string      `json:"password" binding:"required,min=6"`
	Role      models.Role `json:"role" binding:"required"`
	Address   string      `json:"address"`
	City      string      `json:"city"`
	Skills    []string    `json:"skills"`
	CNIC      string      `json:"cnic"`
	CNICFront string      `json:"cnic_front"`
	CNICBack  string      `json:"cnic_back"`
	Picture   string      `json:"profile_picture"`
}

// UpdateProfileInput carries optional fields; nil means unchanged.
type UpdateProfileInput struct {
	Name           *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Phone          *string  `json:"phone" binding:"omitempty,max=20"`
	ProfilePicture *string  `json:"profile_picture" binding:"omitempty,url"`
	Address        *string  `json:"address"`
	City           *string  `json:"city"`
	Skills         []string `json:"skills"`
}

func validSkills(skills []string) bool {
	if len(skills) == 0 || len(skills) > models.MaxWorkerSkills {
		return false
	}
	seen := map[string]bool{}
	for _, s := range skills {
		if !models.IsCategory(s) || seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}
