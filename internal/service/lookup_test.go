package service

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

func TestEnrollInMalformedCourseIDIsNotFound(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sessions WHERE id = $1")).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})

	svc := NewEnrollmentService(repository.NewEnrollmentRepository(db), repository.NewCourseRepository(db), CapacityPolicy{}, nil, nil, nil)
	_, err = svc.Create(context.Background(), "not-a-uuid", enrollReq("d-1"), "")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)

	_, err = loadSession(context.Background(), repository.NewSessionRepository(db), "not-a-uuid")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
