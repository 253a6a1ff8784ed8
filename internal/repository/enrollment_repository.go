package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const enrollmentColumns = `id, course_id, dancer_id, dancer_name, dancer_email, enrollment_date, status, payment_status,
        amount_paid, notes, created_at, created_by, last_modified_at, last_modified_by`

const enrollmentDetailSelect = `SELECT e.id, e.course_id, e.dancer_id, e.dancer_name, e.dancer_email, e.enrollment_date,
        e.status, e.payment_status, e.amount_paid, e.notes, e.created_at, e.created_by, e.last_modified_at,
        e.last_modified_by, c.name AS course_name, c.start_date AS course_start_date
        FROM course_enrollments e
        JOIN courses c ON c.id = e.course_id`

const (
	acquireSlotQuery = `UPDATE courses SET enrollment_count = enrollment_count + 1 WHERE id = $1 AND enrollment_count < capacity`
	releaseSlotQuery = `UPDATE courses SET enrollment_count = GREATEST(enrollment_count - 1, 0) WHERE id = $1`
)

// EnrollmentRepository persists enrollments and keeps the course counter in
// step with them.
type EnrollmentRepository struct {
	table[models.CourseEnrollment]
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{table: newTable[models.CourseEnrollment](db, "course_enrollments", enrollmentColumns)}
}

// Create inserts an enrollment. With takeSlot the course counter is bumped in
// the same transaction and ErrCapacityReached is returned when no slot is
// free. A second row for the same course and dancer yields ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.CourseEnrollment, takeSlot bool) (err error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	if takeSlot {
		if err = acquireSlot(ctx, tx, enrollment.CourseID); err != nil {
			return err
		}
	}

	const query = `INSERT INTO course_enrollments (id, course_id, dancer_id, dancer_name, dancer_email, enrollment_date,
        status, payment_status, amount_paid, notes, created_at, created_by)
        VALUES (:id, :course_id, :dancer_id, :dancer_name, :dancer_email, :enrollment_date, :status, :payment_status,
        :amount_paid, :notes, :created_at, :created_by)`
	if _, err = tx.NamedExecContext(ctx, query, enrollment); err != nil {
		return translate(err, "insert enrollment")
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create enrollment: %w", err)
	}
	return nil
}

// Update locks the enrollment, lets apply mutate it and choose a counter
// adjustment, then persists both atomically.
func (r *EnrollmentRepository) Update(ctx context.Context, id string, apply func(*models.CourseEnrollment) (models.SlotDelta, error)) (_ *models.CourseEnrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	current, err := r.findByID(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	delta, err := apply(current)
	if err != nil {
		return nil, err
	}
	switch delta {
	case models.SlotAcquire:
		err = acquireSlot(ctx, tx, current.CourseID)
	case models.SlotRelease:
		err = releaseSlot(ctx, tx, current.CourseID)
	}
	if err != nil {
		return nil, err
	}

	const query = `UPDATE course_enrollments SET status = :status, payment_status = :payment_status,
        amount_paid = :amount_paid, notes = :notes, last_modified_at = :last_modified_at,
        last_modified_by = :last_modified_by
        WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, current); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update enrollment: %w", err)
	}
	return current, nil
}

// Delete removes an enrollment. The course counter is decremented, floored at
// zero, unless holdsSlot reports that the removed row held no slot.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string, holdsSlot func(models.EnrollmentStatus) bool) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	var removed struct {
		CourseID string                  `db:"course_id"`
		Status   models.EnrollmentStatus `db:"status"`
	}
	if err = tx.GetContext(ctx, &removed, `DELETE FROM course_enrollments WHERE id = $1 RETURNING course_id, status`, id); err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if holdsSlot == nil || holdsSlot(removed.Status) {
		if err = releaseSlot(ctx, tx, removed.CourseID); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete enrollment: %w", err)
	}
	return nil
}

func acquireSlot(ctx context.Context, tx *sqlx.Tx, courseID string) error {
	res, err := tx.ExecContext(ctx, acquireSlotQuery, courseID)
	if err != nil {
		return fmt.Errorf("acquire course slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquire course slot: %w", err)
	}
	if affected == 0 {
		return ErrCapacityReached
	}
	return nil
}

func releaseSlot(ctx context.Context, tx *sqlx.Tx, courseID string) error {
	if _, err := tx.ExecContext(ctx, releaseSlotQuery, courseID); err != nil {
		return fmt.Errorf("release course slot: %w", err)
	}
	return nil
}

// FindDetailByID returns an enrollment with course context.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+" WHERE e.id = $1", id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment detail: %w", err)
	}
	return &detail, nil
}

// FindByCourseAndDancer returns the single enrollment for the pair.
func (r *EnrollmentRepository) FindByCourseAndDancer(ctx context.Context, courseID, dancerID string) (*models.CourseEnrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM course_enrollments WHERE course_id = $1 AND dancer_id = $2", enrollmentColumns)
	var enrollment models.CourseEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, courseID, dancerID); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment by course and dancer: %w", err)
	}
	return &enrollment, nil
}

// IsEnrolled reports whether any enrollment row exists for the pair.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, dancerID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE course_id = $1 AND dancer_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, dancerID); err != nil {
		if missing(err) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// ListByCourse returns a course roster ordered by dancer name.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	var enrollments []models.EnrollmentDetail
	query := enrollmentDetailSelect + " WHERE e.course_id = $1 ORDER BY e.dancer_name ASC"
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByDancer returns a dancer's enrollments, latest course first.
func (r *EnrollmentRepository) ListByDancer(ctx context.Context, dancerID string) ([]models.EnrollmentDetail, error) {
	var enrollments []models.EnrollmentDetail
	query := enrollmentDetailSelect + " WHERE e.dancer_id = $1 ORDER BY c.start_date DESC"
	if err := r.db.SelectContext(ctx, &enrollments, query, dancerID); err != nil {
		return nil, fmt.Errorf("list dancer enrollments: %w", err)
	}
	return enrollments, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.DancerID != "" {
		conditions = append(conditions, fmt.Sprintf("e.dancer_id = $%d", len(args)+1))
		args = append(args, filter.DancerID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("e.payment_status = $%d", len(args)+1))
		args = append(args, *filter.PaymentStatus)
	}
	if filter.EnrolledFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.enrollment_date >= $%d", len(args)+1))
		args = append(args, *filter.EnrolledFrom)
	}
	if filter.EnrolledTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.enrollment_date <= $%d", len(args)+1))
		args = append(args, *filter.EnrolledTo)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.dancer_name) LIKE $%d OR LOWER(COALESCE(e.dancer_email, '')) LIKE $%d)", n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalisePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY e.enrollment_date DESC LIMIT %d OFFSET %d", enrollmentDetailSelect, clause, size, offset)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM course_enrollments e"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}
