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

var sessionRowColumns = []string{"id", "course_id", "start_time", "end_time", "location", "notes", "is_canceled",
	"cancellation_reason", "created_at", "created_by", "last_modified_at", "last_modified_by"}

func TestSessionRepositoryFindInCourseWrongCourse(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sessions WHERE id = $1 AND course_id = $2")).
		WithArgs("s-1", "other-course").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindInCourse(context.Background(), "other-course", "s-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByCoursesGroups(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow("s-1", "c-1", start, start.Add(time.Hour), nil, nil, false, nil, start, "system", nil, nil).
		AddRow("s-2", "c-1", start.AddDate(0, 0, 7), start.AddDate(0, 0, 7).Add(time.Hour), nil, nil, false, nil, start, "system", nil, nil).
		AddRow("s-3", "c-2", start, start.Add(time.Hour), nil, nil, true, "holiday", start, "system", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sessions WHERE course_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	grouped, err := repo.ListByCourses(context.Background(), []string{"c-1", "c-2"})
	require.NoError(t, err)
	assert.Len(t, grouped["c-1"], 2)
	require.Len(t, grouped["c-2"], 1)
	assert.True(t, grouped["c-2"][0].IsCanceled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByCoursesEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	grouped, err := repo.ListByCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, grouped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_sessions SET start_time = $1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_sessions WHERE id = $1 AND course_id = $2")).
		WithArgs("s-1", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), &models.CourseSession{ID: "s-1", CourseID: "c-1"}))
	require.ErrorIs(t, repo.DeleteInCourse(context.Background(), "c-1", "s-1"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryMalformedIDs(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)
	attendances := NewAttendanceRepository(db)
	enrollments := NewEnrollmentRepository(db)
	badID := &pq.Error{Code: "22P02"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sessions WHERE id = $1 AND course_id = $2")).
		WithArgs("s?", "c-1").
		WillReturnError(badID)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_sessions WHERE id = $1 AND course_id = $2")).
		WithArgs("s?", "c-1").
		WillReturnError(badID)
	mock.ExpectQuery(regexp.QuoteMeta("FROM session_attendances WHERE session_id = $1 AND dancer_id = $2")).
		WithArgs("s?", "d-1").
		WillReturnError(badID)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("e?").
		WillReturnError(badID)

	ctx := context.Background()
	_, err := repo.FindInCourse(ctx, "c-1", "s?")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.ErrorIs(t, repo.DeleteInCourse(ctx, "c-1", "s?"), sql.ErrNoRows)
	_, err = attendances.FindBySessionAndDancer(ctx, "s?", "d-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = enrollments.FindDetailByID(ctx, "e?")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
