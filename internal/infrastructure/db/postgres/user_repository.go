package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

// usersEmailKey is the default name Postgres gives the users.email UNIQUE
// constraint.
const usersEmailKey = "users_email_key"

var errEmailInUse = fmt.Errorf("%w: email already in use", domain.ErrValidation)

const userColumns = `id, username, password, email, full_name, salon_name, bio, profile_image_url, created_at, last_login`

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a UserRepository backed by the users table.
func NewUserRepository(db DBTX) ports.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, password, email, full_name, salon_name, bio, profile_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.FullName,
		user.SalonName,
		user.Bio,
		user.ProfileImageURL,
	))
	if err != nil {
		if constraint, ok := uniqueViolationOn(err); ok {
			if constraint == usersEmailKey {
				return nil, errEmailInUse
			}
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, query, username)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateProfile only touches the profile columns; the password column is not
// reachable from here.
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.User, error) {
	query := `
		UPDATE users SET
			email             = COALESCE($2, email),
			full_name         = COALESCE($3, full_name),
			salon_name        = COALESCE($4, salon_name),
			bio               = COALESCE($5, bio),
			profile_image_url = COALESCE($6, profile_image_url)
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		id,
		patch.Email,
		patch.FullName,
		patch.SalonName,
		patch.Bio,
		patch.ProfileImageURL,
	))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrUserNotFound
		case isUniqueViolation(err):
			return nil, errEmailInUse
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.FullName,
		&u.SalonName,
		&u.Bio,
		&u.ProfileImageURL,
		&u.CreatedAt,
		&u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
