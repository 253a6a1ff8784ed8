package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("mia@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "phone", "role", "active", "last_login", "created_at", "created_by", "last_modified_at", "last_modified_by"}).
			AddRow("u-1", "mia@example.com", "hash", "Mia", "Torres", nil, "ADMIN", true, nil, now, "system", nil, nil))

	user, err := repo.FindByEmail(context.Background(), "mia@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "Mia Torres", user.DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email)")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Email: "mia@example.com"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateProfile(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	phone := "555-0100"
	user := &models.User{ID: "u-1", FirstName: "Mia", LastName: "Torres", Phone: &phone}
	user.Touch("Mia Torres", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET first_name = $1, last_name = $2, phone = $3")).
		WithArgs("Mia", "Torres", "555-0100", *user.LastModifiedAt, "Mia Torres", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), user))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdatePasswordMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdatePassword(context.Background(), &models.User{ID: "u-404", PasswordHash: "hash"})
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
		WillReturnError(&pq.Error{Code: "22P02"})
	err = repo.UpdatePassword(context.Background(), &models.User{ID: "not-a-uuid", PasswordHash: "hash"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
