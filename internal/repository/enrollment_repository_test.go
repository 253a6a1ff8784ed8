package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

var enrollmentRowColumns = []string{"id", "course_id", "dancer_id", "dancer_name", "dancer_email", "enrollment_date", "status",
	"payment_status", "amount_paid", "notes", "created_at", "created_by", "last_modified_at", "last_modified_by"}

func TestEnrollmentRepositoryCreateTakesSlot(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(acquireSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_enrollments")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment := &models.CourseEnrollment{CourseID: "c-1", DancerID: "d-1", DancerName: "Ana", Status: models.EnrollmentStatusActive}
	require.NoError(t, repo.Create(context.Background(), enrollment, true))
	assert.NotEmpty(t, enrollment.ID)
	assert.False(t, enrollment.EnrollmentDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCourseFull(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(acquireSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.CourseEnrollment{CourseID: "c-1", DancerID: "d-2"}, true)
	require.ErrorIs(t, err, ErrCapacityReached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicateRollsBackSlot(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(acquireSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_enrollments")).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.CourseEnrollment{CourseID: "c-1", DancerID: "d-1"}, true)
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateWithoutSlot(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_enrollments")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.CourseEnrollment{CourseID: "c-1", DancerID: "d-1", Status: models.EnrollmentStatusWaitlisted}, false)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateReleasesSlot(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollments WHERE id = $1 FOR UPDATE")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "c-1", "d-1", "Ana", nil, now, "ACTIVE", "PENDING", 0.0, nil, now, "system", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(releaseSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_enrollments SET status = $1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), "e-1", func(e *models.CourseEnrollment) (models.SlotDelta, error) {
		assert.Equal(t, models.EnrollmentStatusActive, e.Status)
		e.Status = models.EnrollmentStatusDropped
		return models.SlotRelease, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, updated.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateReacquireFull(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "c-1", "d-1", "Ana", nil, now, "DROPPED", "PENDING", 0.0, nil, now, "system", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(acquireSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "e-1", func(e *models.CourseEnrollment) (models.SlotDelta, error) {
		e.Status = models.EnrollmentStatusActive
		return models.SlotAcquire, nil
	})
	require.ErrorIs(t, err, ErrCapacityReached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateApplyError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "c-1", "d-1", "Ana", nil, now, "ACTIVE", "PENDING", 0.0, nil, now, "system", nil, nil))
	mock.ExpectRollback()

	boom := errors.New("rejected")
	_, err := repo.Update(context.Background(), "e-1", func(*models.CourseEnrollment) (models.SlotDelta, error) {
		return models.SlotKeep, boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteReleasesSlot(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM course_enrollments WHERE id = $1 RETURNING course_id, status")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "status"}).AddRow("c-1", "ACTIVE"))
	mock.ExpectExec(regexp.QuoteMeta(releaseSlotQuery)).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "e-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteNonHoldingRow(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM course_enrollments")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "status"}).AddRow("c-1", "DROPPED"))
	mock.ExpectCommit()

	holds := func(status models.EnrollmentStatus) bool { return status != models.EnrollmentStatusDropped }
	require.NoError(t, repo.Delete(context.Background(), "e-1", holds))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM course_enrollments")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "status"}))
	mock.ExpectRollback()

	require.ErrorIs(t, repo.Delete(context.Background(), "missing", nil), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	status := models.EnrollmentStatusActive
	now := time.Now().UTC()
	columns := append(append([]string{}, enrollmentRowColumns...), "course_name", "course_start_date")
	rows := sqlmock.NewRows(columns).
		AddRow("e-1", "c-1", "d-1", "Ana Lee", "ana@example.com", now, "ACTIVE", "PAID", 50.0, nil, now, "system", nil, nil, "Ballet I", now)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.course_id = $1 AND e.status = $2 AND (LOWER(e.dancer_name) LIKE $3 OR LOWER(COALESCE(e.dancer_email, '')) LIKE $3) ORDER BY e.enrollment_date DESC LIMIT 5 OFFSET 5")).
		WithArgs("c-1", status, "%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM course_enrollments e WHERE e.course_id = $1")).
		WithArgs("c-1", status, "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	list, total, err := repo.List(context.Background(), models.EnrollmentFilter{CourseID: "c-1", Status: &status, Search: "ANA", Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 6, total)
	assert.Equal(t, "Ballet I", list[0].CourseName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsEnrolled(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE course_id = $1 AND dancer_id = $2)")).
		WithArgs("c-1", "d-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	enrolled, err := repo.IsEnrolled(context.Background(), "c-1", "d-1")
	require.NoError(t, err)
	assert.False(t, enrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByDancerOrdering(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.dancer_id = $1 ORDER BY c.start_date DESC")).
		WithArgs("d-1").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, enrollmentRowColumns...), "course_name", "course_start_date")))

	list, err := repo.ListByDancer(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}
