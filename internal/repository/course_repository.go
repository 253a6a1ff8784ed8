package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const courseColumns = `id, name, description, dance_style, difficulty_level, start_date, end_date, duration_minutes,
        capacity, enrollment_count, location, instructor_id, instructor_name, is_active, price, currency,
        created_at, created_by, last_modified_at, last_modified_by`

const insertCourseQuery = `INSERT INTO courses (id, name, description, dance_style, difficulty_level, start_date, end_date,
        duration_minutes, capacity, enrollment_count, location, instructor_id, instructor_name, is_active, price, currency,
        created_at, created_by)
        VALUES (:id, :name, :description, :dance_style, :difficulty_level, :start_date, :end_date, :duration_minutes,
        :capacity, 0, :location, :instructor_id, :instructor_name, :is_active, :price, :currency, :created_at, :created_by)`

// CourseRepository persists courses. The enrollment counter is only changed
// through EnrollmentRepository.
type CourseRepository struct {
	table[models.Course]
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{table: newTable[models.Course](db, "courses", courseColumns)}
}

// NameExists checks course name uniqueness, ignoring excludeID.
func (r *CourseRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course name: %w", err)
	}
	return true, nil
}

// Create inserts the course and its initial sessions in one transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, sessions []models.CourseSession) (err error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	if _, err = tx.NamedExecContext(ctx, insertCourseQuery, course); err != nil {
		return translate(err, "insert course")
	}
	for i := range sessions {
		sessions[i].CourseID = course.ID
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
		if _, err = tx.NamedExecContext(ctx, insertSessionQuery, &sessions[i]); err != nil {
			return translate(err, "insert course session")
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// Update writes the editable course columns and refreshes
// course.EnrollmentCount with the committed counter.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET name = :name, description = :description, dance_style = :dance_style,
        difficulty_level = :difficulty_level, start_date = :start_date, end_date = :end_date,
        duration_minutes = :duration_minutes, capacity = :capacity, location = :location,
        instructor_id = :instructor_id, instructor_name = :instructor_name, is_active = :is_active,
        price = :price, currency = :currency, last_modified_at = :last_modified_at, last_modified_by = :last_modified_by
        WHERE id = :id
        RETURNING enrollment_count`
	bound, args, err := sqlx.Named(query, course)
	if err != nil {
		return fmt.Errorf("bind update course: %w", err)
	}
	if err := r.db.GetContext(ctx, &course.EnrollmentCount, r.db.Rebind(bound), args...); err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return translate(err, "update course")
	}
	return nil
}

// List returns courses matching the filter ordered by start date.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d OR LOWER(COALESCE(instructor_name, '')) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.DanceStyle != nil {
		conditions = append(conditions, fmt.Sprintf("dance_style = $%d", len(args)+1))
		args = append(args, *filter.DanceStyle)
	}
	if filter.DifficultyLevel != nil {
		conditions = append(conditions, fmt.Sprintf("difficulty_level = $%d", len(args)+1))
		args = append(args, *filter.DifficultyLevel)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.StartFrom != nil {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", len(args)+1))
		args = append(args, *filter.StartFrom)
	}
	if filter.StartTo != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.StartTo)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.HasAvailableSpots != nil {
		if *filter.HasAvailableSpots {
			conditions = append(conditions, "enrollment_count < capacity")
		} else {
			conditions = append(conditions, "enrollment_count >= capacity")
		}
	}
	if filter.FutureOnly {
		conditions = append(conditions, fmt.Sprintf("start_date > $%d", len(args)+1))
		args = append(args, filter.Now)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalisePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM courses%s ORDER BY start_date ASC, name ASC LIMIT %d OFFSET %d", courseColumns, clause, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}
