package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const attendanceColumns = `id, session_id, dancer_id, dancer_name, status, recorded_at, notes,
        created_at, created_by, last_modified_at, last_modified_by`

// AttendanceRepository persists session attendance.
type AttendanceRepository struct {
	table[models.SessionAttendance]
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{table: newTable[models.SessionAttendance](db, "session_attendances", attendanceColumns)}
}

// Upsert writes the attendance for (session, dancer) in one statement. On an
// existing row status and recorded_at are replaced, notes only when supplied,
// and the dancer name snapshot is kept. Modification columns are only set on
// the update path. The bool reports whether a row was inserted.
func (r *AttendanceRepository) Upsert(ctx context.Context, attendance *models.SessionAttendance) (bool, error) {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	query := `INSERT INTO session_attendances (id, session_id, dancer_id, dancer_name, status, recorded_at, notes,
        created_at, created_by, last_modified_at, last_modified_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NULL)
        ON CONFLICT (session_id, dancer_id)
        DO UPDATE SET status = EXCLUDED.status, recorded_at = EXCLUDED.recorded_at,
            notes = COALESCE(EXCLUDED.notes, session_attendances.notes),
            last_modified_at = $10, last_modified_by = $11
        RETURNING ` + attendanceColumns + `, (xmax = 0) AS inserted`

	var row struct {
		models.SessionAttendance
		Inserted bool `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query,
		attendance.ID,
		attendance.SessionID,
		attendance.DancerID,
		attendance.DancerName,
		attendance.Status,
		attendance.RecordedAt,
		attendance.Notes,
		attendance.CreatedAt,
		attendance.CreatedBy,
		attendance.LastModifiedAt,
		attendance.LastModifiedBy,
	); err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	*attendance = row.SessionAttendance
	return row.Inserted, nil
}

// FindBySessionAndDancer returns one attendance record.
func (r *AttendanceRepository) FindBySessionAndDancer(ctx context.Context, sessionID, dancerID string) (*models.SessionAttendance, error) {
	query := fmt.Sprintf("SELECT %s FROM session_attendances WHERE session_id = $1 AND dancer_id = $2", attendanceColumns)
	var attendance models.SessionAttendance
	if err := r.db.GetContext(ctx, &attendance, query, sessionID, dancerID); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &attendance, nil
}

// ListBySession returns attendance ordered by dancer name.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendance, error) {
	query := fmt.Sprintf("SELECT %s FROM session_attendances WHERE session_id = $1 ORDER BY dancer_name ASC", attendanceColumns)
	var records []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		if missing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// DeleteBySessionAndDancer removes one record, sql.ErrNoRows when absent.
func (r *AttendanceRepository) DeleteBySessionAndDancer(ctx context.Context, sessionID, dancerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_attendances WHERE session_id = $1 AND dancer_id = $2`, sessionID, dancerID)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete attendance: %w", err)
	}
	return expectAffected(res)
}
