package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const sessionColumns = `id, course_id, start_time, end_time, location, notes, is_canceled, cancellation_reason,
        created_at, created_by, last_modified_at, last_modified_by`

const insertSessionQuery = `INSERT INTO course_sessions (id, course_id, start_time, end_time, location, notes, is_canceled,
        cancellation_reason, created_at, created_by)
        VALUES (:id, :course_id, :start_time, :end_time, :location, :notes, :is_canceled, :cancellation_reason,
        :created_at, :created_by)`

// SessionRepository persists course sessions.
type SessionRepository struct {
	table[models.CourseSession]
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{table: newTable[models.CourseSession](db, "course_sessions", sessionColumns)}
}

// FindInCourse loads a session only if it belongs to courseID.
func (r *SessionRepository) FindInCourse(ctx context.Context, courseID, sessionID string) (*models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE id = $1 AND course_id = $2", sessionColumns)
	var session models.CourseSession
	if err := r.db.GetContext(ctx, &session, query, sessionID, courseID); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find course session: %w", err)
	}
	return &session, nil
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, session *models.CourseSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
		return translate(err, "create course session")
	}
	return nil
}

// Update writes the editable session columns.
func (r *SessionRepository) Update(ctx context.Context, session *models.CourseSession) error {
	const query = `UPDATE course_sessions SET start_time = :start_time, end_time = :end_time, location = :location,
        notes = :notes, is_canceled = :is_canceled, cancellation_reason = :cancellation_reason,
        last_modified_at = :last_modified_at, last_modified_by = :last_modified_by
        WHERE id = :id AND course_id = :course_id`
	res, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("update course session: %w", err)
	}
	return expectAffected(res)
}

// DeleteInCourse removes a session; attendance rows cascade.
func (r *SessionRepository) DeleteInCourse(ctx context.Context, courseID, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM course_sessions WHERE id = $1 AND course_id = $2`, sessionID, courseID)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete course session: %w", err)
	}
	return expectAffected(res)
}

// ListByCourse returns sessions ordered by start time.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE course_id = $1 ORDER BY start_time ASC", sessionColumns)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, courseID); err != nil {
		return nil, fmt.Errorf("list course sessions: %w", err)
	}
	return sessions, nil
}

// ListByCourses loads sessions for a page of courses in one round trip.
func (r *SessionRepository) ListByCourses(ctx context.Context, courseIDs []string) (map[string][]models.CourseSession, error) {
	grouped := make(map[string][]models.CourseSession, len(courseIDs))
	if len(courseIDs) == 0 {
		return grouped, nil
	}
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE course_id = ANY($1) ORDER BY course_id, start_time ASC", sessionColumns)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list sessions for courses: %w", err)
	}
	for _, s := range sessions {
		grouped[s.CourseID] = append(grouped[s.CourseID], s)
	}
	return grouped, nil
}
