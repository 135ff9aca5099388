package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo      UserRepositoryInterface
	db        *sql.DB
	jwtSecret string
}

type UserServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (models.Profile, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	SetPushToken(ctx context.Context, id, token string) error
	ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error)
}

func NewUserService(repo UserRepositoryInterface, db *sql.DB, jwtSecret string) UserServiceInterface {
	return &UserService{
		repo:      repo,
		db:        db,
		jwtSecret: jwtSecret,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer or worker account. Admins are seeded, never
// self-registered.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	account := models.Account{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          normalizeEmail(in.Email),
		Phone:          in.Phone,
		ProfilePicture: in.Picture,
	}

	var profile models.Profile
	switch in.Role {
	case models.RoleCustomer:
		profile = &models.CustomerProfile{Account: account, Address: in.Address}
	case models.RoleWorker:
		if !validSkills(in.Skills) {
			return "", ErrInvalidSkills
		}
		if strings.TrimSpace(in.CNIC) == "" {
			return "", ErrCNICRequired
		}
		profile = &models.WorkerProfile{
			Account:   account,
			Skills:    in.Skills,
			City:      in.City,
			CNIC:      in.CNIC,
			CNICFront: in.CNICFront,
			CNICBack:  in.CNICBack,
		}
	default:
		return "", ErrInvalidRole
	}

	hashedPassword, err := auth.GeneratePasswordHash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", err
		}
		return "", errors.New("failed to hash password")
	}

	err = utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.Create(ctx, tx, profile, hashedPassword)
	})
	if err != nil {
		return "", err
	}

	return account.ID, nil
}

// Login validates email and password and issues a token pair
func (s *UserService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	creds, err := s.repo.GetCredentialsByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.ComparePasswordHash([]byte(creds.Password), password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return auth.GenerateTokenPair(creds.ID, creds.Role, s.jwtSecret)
}

// Refresh rotates a refresh token whose user still exists.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := auth.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.RefreshToken {
		return nil, auth.ErrInvalidToken
	}

	if _, err := s.repo.GetByID(ctx, s.db, claims.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logrus.WithField("user_id", claims.UserID).Warn("Refresh token for unknown user")
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	return auth.RefreshTokenPair(refreshToken, s.jwtSecret)
}

func (s *UserService) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	return s.repo.GetByID(ctx, s.db, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (models.Profile, error) {
	var profile models.Profile

	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		base := p.Base()
		if in.Name != nil {
			base.Name = strings.TrimSpace(*in.Name)
		}
		if in.Phone != nil {
			base.Phone = *in.Phone
		}
		if in.ProfilePicture != nil {
			base.ProfilePicture = *in.ProfilePicture
		}

		switch typed := p.(type) {
		case *models.CustomerProfile:
			if in.Address != nil {
				typed.Address = *in.Address
			}
		case *models.WorkerProfile:
			if in.City != nil {
				typed.City = *in.City
			}
			if in.Skills != nil {
				if !validSkills(in.Skills) {
					return ErrInvalidSkills
				}
				if err := s.repo.ReplaceSkills(ctx, tx, id, in.Skills); err != nil {
					return err
				}
				typed.Skills = in.Skills
			}
		}

		if in.Skills != nil && p.Role() != models.RoleWorker {
			return ErrNotAWorker
		}

		if err := s.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", id).Info("Profile updated")
	return profile, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	creds, err := s.repo.GetCredentialsByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := auth.ComparePasswordHash([]byte(creds.Password), current); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := auth.GeneratePasswordHash(next)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return err
		}
		return errors.New("failed to hash password")
	}
	return s.repo.UpdatePassword(ctx, s.db, id, hashedPassword)
}

func (s *UserService) SetPushToken(ctx context.Context, id, token string) error {
	return s.repo.UpdatePushToken(ctx, s.db, id, strings.TrimSpace(token))
}

func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.repo.ListByRole(ctx, s.db, role)
}
