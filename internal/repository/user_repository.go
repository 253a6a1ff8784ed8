package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, active, last_login,
        created_at, created_by, last_modified_at, last_modified_by`

// UserRepository provides database access for accounts.
type UserRepository struct {
	table[models.User]
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{table: newTable[models.User](db, "users", userColumns)}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a user; ErrDuplicate when the email is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, active, created_at, created_by)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :phone, :role, :active, :created_at, :created_by)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return translate(err, "create user")
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdateProfile writes the self-editable columns of user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET first_name = :first_name, last_name = :last_name, phone = :phone,
        last_modified_at = :last_modified_at, last_modified_by = :last_modified_by
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update user profile: %w", err)
	}
	return expectAffected(res)
}

// UpdatePassword stores a new password hash and stamps the modification.
func (r *UserRepository) UpdatePassword(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET password_hash = :password_hash,
        last_modified_at = :last_modified_at, last_modified_by = :last_modified_by
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update user password: %w", err)
	}
	return expectAffected(res)
}
