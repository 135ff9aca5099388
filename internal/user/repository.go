package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/models"

	"github.com/sirupsen/logrus"
)

type UserRepository struct{}

type UserRepositoryInterface interface {
	Create(ctx context.Context, ex db.Executor, profile models.Profile, passwordHash string) error
	GetByID(ctx context.Context, ex db.Executor, id string) (models.Profile, error)
	GetCredentialsByEmail(ctx context.Context, ex db.Executor, email string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, ex db.Executor, id string) (*Credentials, error)
	ListByRole(ctx context.Context, ex db.Executor, role models.Role) ([]models.Profile, error)
	Update(ctx context.Context, ex db.Executor, profile models.Profile) error
	ReplaceSkills(ctx context.Context, ex db.Executor, userID string, skills []string) error
	UpdatePassword(ctx context.Context, ex db.Executor, id, hashedPassword string) error
	UpdatePushToken(ctx context.Context, ex db.Executor, id, token string) error
	ApplyRating(ctx context.Context, ex db.Executor, id string, rating int) error
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

const userColumns = `
	id, role, name, email, phone, profile_picture, push_token,
	address, city, cnic, cnic_front, cnic_back,
	verified, rating, total_jobs, created_at, updated_at`

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create creates a new user and, for workers, their skills
func (r *UserRepository) Create(ctx context.Context, ex db.Executor, profile models.Profile, passwordHash string) error {
	base := profile.Base()
	now := time.Now().UTC()
	base.CreatedAt, base.UpdatedAt = now, now

	var address, city, cnic, cnicFront, cnicBack string
	var verified bool
	switch p := profile.(type) {
	case *models.CustomerProfile:
		address = p.Address
	case *models.WorkerProfile:
		city, cnic, cnicFront, cnicBack, verified = p.City, p.CNIC, p.CNICFront, p.CNICBack, p.Verified
	}

	query := `
		INSERT INTO users (
			id, role, name, email, phone, password, profile_picture,
			address, city, cnic, cnic_front, cnic_back, verified,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := ex.ExecContext(ctx, query,
		base.ID, string(profile.Role()), base.Name, nullable(base.Email), nullable(base.Phone),
		passwordHash, nullable(base.ProfilePicture),
		nullable(address), nullable(city), nullable(cnic), nullable(cnicFront), nullable(cnicBack), verified,
		base.CreatedAt, base.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		logrus.WithError(err).Error("Failed to create user")
		return err
	}

	if w, ok := profile.(*models.WorkerProfile); ok {
		if err := r.ReplaceSkills(ctx, ex, base.ID, w.Skills); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": base.ID,
		"role":    profile.Role(),
	}).Info("User created successfully")

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var (
		id, role, name                                                          string
		email, phone, picture, pushToken, address, city, cnic, cnicFront, cnicBack sql.NullString
		verified                                                                bool
		rating                                                                  float64
		totalJobs                                                               int
		createdAt, updatedAt                                                    time.Time
	)

	if err := row.Scan(
		&id, &role, &name, &email, &phone, &picture, &pushToken,
		&address, &city, &cnic, &cnicFront, &cnicBack,
		&verified, &rating, &totalJobs, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	account := models.Account{
		ID:             id,
		Name:           name,
		Email:          email.String,
		Phone:          phone.String,
		ProfilePicture: picture.String,
		PushToken:      pushToken.String,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}

	switch models.Role(role) {
	case models.RoleCustomer:
		return &models.CustomerProfile{Account: account, Address: address.String}, nil
	case models.RoleWorker:
		return &models.WorkerProfile{
			Account:   account,
			City:      city.String,
			CNIC:      cnic.String,
			CNICFront: cnicFront.String,
			CNICBack:  cnicBack.String,
			Verified:  verified,
			Rating:    rating,
			TotalJobs: totalJobs,
		}, nil
	case models.RoleAdmin:
		return &models.AdminProfile{Account: account}, nil
	}
	return nil, errors.New("unknown role " + role)
}

func (r *UserRepository) loadSkills(ctx context.Context, ex db.Executor, w *models.WorkerProfile) error {
	rows, err := ex.QueryContext(ctx, `SELECT skill FROM worker_skills WHERE user_id = $1 ORDER BY skill`, w.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	w.Skills = []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		w.Skills = append(w.Skills, s)
	}
	return rows.Err()
}

// GetByID retrieves a user profile by ID
func (r *UserRepository) GetByID(ctx context.Context, ex db.Executor, id string) (models.Profile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	profile, err := scanProfile(ex.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("user_id", id).Debug("User not found")
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by ID")
		return nil, err
	}

	if w, ok := profile.(*models.WorkerProfile); ok {
		if err := r.loadSkills(ctx, ex, w); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (r *UserRepository) getCredentials(ctx context.Context, ex db.Executor, where string, arg string) (*Credentials, error) {
	query := `SELECT id, role, password FROM users WHERE ` + where + ` = $1`

	var c Credentials
	var role string
	if err := ex.QueryRowContext(ctx, query, arg).Scan(&c.ID, &role, &c.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	c.Role = models.Role(role)
	return &c, nil
}

func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, ex db.Executor, email string) (*Credentials, error) {
	return r.getCredentials(ctx, ex, "email", email)
}

func (r *UserRepository) GetCredentialsByID(ctx context.Context, ex db.Executor, id string) (*Credentials, error) {
	return r.getCredentials(ctx, ex, "id", id)
}

func (r *UserRepository) ListByRole(ctx context.Context, ex db.Executor, role models.Role) ([]models.Profile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`

	rows, err := ex.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, err
	}

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			logrus.Error("Error scanning user row: ", err)
			continue
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, p := range profiles {
		if w, ok := p.(*models.WorkerProfile); ok {
			if err := r.loadSkills(ctx, ex, w); err != nil {
				return nil, err
			}
		}
	}
	return profiles, nil
}

// Update writes the mutable profile fields back
func (r *UserRepository) Update(ctx context.Context, ex db.Executor, profile models.Profile) error {
	base := profile.Base()
	base.UpdatedAt = time.Now().UTC()

	var address, city string
	switch p := profile.(type) {
	case *models.CustomerProfile:
		address = p.Address
	case *models.WorkerProfile:
		city = p.City
	}

	query := `
		UPDATE users
		SET name = $1, phone = $2, profile_picture = $3, address = $4, city = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := ex.ExecContext(ctx, query,
		base.Name, nullable(base.Phone), nullable(base.ProfilePicture),
		nullable(address), nullable(city), base.UpdatedAt, base.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to update user")
		return err
	}
	return expectOneRow(result)
}

func (r *UserRepository) ReplaceSkills(ctx context.Context, ex db.Executor, userID string, skills []string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM worker_skills WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, s := range skills {
		if _, err := ex.ExecContext(ctx, `INSERT INTO worker_skills (user_id, skill) VALUES ($1, $2)`, userID, s); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePassword updates user's password
func (r *UserRepository) UpdatePassword(ctx context.Context, ex db.Executor, id, hashedPassword string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`,
		hashedPassword, time.Now().UTC(), id)
	if err != nil {
		logrus.WithError(err).Error("Failed to update password")
		return err
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	logrus.WithField("user_id", id).Info("Password updated successfully")
	return nil
}

func (r *UserRepository) UpdatePushToken(ctx context.Context, ex db.Executor, id, token string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE users SET push_token = $1, updated_at = $2 WHERE id = $3`,
		nullable(token), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ApplyRating folds a new review score into the running mean.
func (r *UserRepository) ApplyRating(ctx context.Context, ex db.Executor, id string, rating int) error {
	query := `
		UPDATE users
		SET rating = (rating * total_jobs + $1) / (total_jobs + 1),
		    total_jobs = total_jobs + 1,
		    updated_at = $2
		WHERE id = $3
	`
	result, err := ex.ExecContext(ctx, query, float64(rating), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
