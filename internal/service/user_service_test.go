package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

func newUserFixture(t *testing.T, users ...*models.User) (*UserService, *mockUserRepo) {
	t.Helper()
	repo := &mockUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	svc := NewUserService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestUserServiceProfile(t *testing.T) {
	svc, _ := newUserFixture(t, activeUser(t, "password123"))

	profile, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Lia Moss", profile.DisplayName)
	assert.Equal(t, models.RoleInstructor, profile.Role)

	_, err = svc.Profile(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUserServiceUpdateProfileStampsModification(t *testing.T) {
	user := activeUser(t, "password123")
	user.Phone = strPtr("555-0100")
	svc, repo := newUserFixture(t, user)

	profile, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{
		FirstName: strPtr("  Lia "),
		LastName:  strPtr("Moss-Kane"),
		Phone:     strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.profileWrites)
	assert.Equal(t, "Lia Moss-Kane", profile.DisplayName)
	assert.Nil(t, profile.Phone)
	require.NotNil(t, profile.LastModifiedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), *profile.LastModifiedAt)
	require.NotNil(t, user.LastModifiedBy)
	assert.Equal(t, "Lia Moss-Kane", *user.LastModifiedBy)
}

func TestUserServiceUpdateProfileKeepsOmittedFields(t *testing.T) {
	user := activeUser(t, "password123")
	user.Phone = strPtr("555-0100")
	svc, _ := newUserFixture(t, user)

	profile, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{LastName: strPtr("Kane")})
	require.NoError(t, err)
	assert.Equal(t, "Lia", profile.FirstName)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "555-0100", *profile.Phone)
}

func TestUserServiceUpdateProfileErrors(t *testing.T) {
	svc, repo := newUserFixture(t, activeUser(t, "password123"))

	_, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{FirstName: strPtr(strings.Repeat("a", 101))})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	repo.updateErr = sql.ErrNoRows
	_, err = svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{FirstName: strPtr("Mia")})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, repo.profileWrites)
}

func TestUserServiceChangePassword(t *testing.T) {
	user := activeUser(t, "password123")
	svc, repo := newUserFixture(t, user)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "new-password-456",
		ConfirmPassword: "new-password-456",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.passwordWrites)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password-456")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	require.NotNil(t, user.LastModifiedAt)
}

func TestUserServiceChangePasswordRejects(t *testing.T) {
	user := activeUser(t, "password123")
	original := user.PasswordHash
	svc, repo := newUserFixture(t, user)

	cases := map[string]models.ChangePasswordRequest{
		"wrong current password": {CurrentPassword: "nope-nope", NewPassword: "new-password-456", ConfirmPassword: "new-password-456"},
		"confirmation mismatch":  {CurrentPassword: "password123", NewPassword: "new-password-456", ConfirmPassword: "other-password"},
		"too short":              {CurrentPassword: "password123", NewPassword: "short", ConfirmPassword: "short"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), "u1", req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		})
	}
	assert.Equal(t, original, user.PasswordHash)
	assert.Zero(t, repo.passwordWrites)
}
