package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

const dancerColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, height_cm, weight_kg,
        experience_level, emergency_contact_name, emergency_contact_phone, medical_notes, notes, joined_date,
        is_active, created_at, created_by, last_modified_at, last_modified_by`

const dancerStyleColumns = `id, dancer_id, style, proficiency, years_of_experience, notes,
        created_at, created_by, last_modified_at, last_modified_by`

// DancerRepository persists dancers and their style proficiencies.
type DancerRepository struct {
	table[models.Dancer]
}

// NewDancerRepository constructs the repository.
func NewDancerRepository(db *sqlx.DB) *DancerRepository {
	return &DancerRepository{table: newTable[models.Dancer](db, "dancers", dancerColumns)}
}

// EmailExists checks email uniqueness case-insensitively, ignoring excludeID.
func (r *DancerRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM dancers WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
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
		return false, fmt.Errorf("check dancer email: %w", err)
	}
	return true, nil
}

const insertDancerStyleQuery = `INSERT INTO dancer_styles (id, dancer_id, style, proficiency, years_of_experience, notes,
        created_at, created_by)
        VALUES (:id, :dancer_id, :style, :proficiency, :years_of_experience, :notes, :created_at, :created_by)`

// Create inserts a dancer together with any initial styles.
func (r *DancerRepository) Create(ctx context.Context, dancer *models.Dancer, styles []models.DancerStyle) (err error) {
	if dancer.ID == "" {
		dancer.ID = uuid.NewString()
	}
	const query = `INSERT INTO dancers (id, first_name, last_name, email, phone, date_of_birth, gender, height_cm, weight_kg,
        experience_level, emergency_contact_name, emergency_contact_phone, medical_notes, notes, joined_date, is_active,
        created_at, created_by)
        VALUES (:id, :first_name, :last_name, :email, :phone, :date_of_birth, :gender, :height_cm, :weight_kg,
        :experience_level, :emergency_contact_name, :emergency_contact_phone, :medical_notes, :notes, :joined_date,
        :is_active, :created_at, :created_by)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create dancer: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	if _, err = tx.NamedExecContext(ctx, query, dancer); err != nil {
		return translate(err, "create dancer")
	}
	for i := range styles {
		styles[i].DancerID = dancer.ID
		if styles[i].ID == "" {
			styles[i].ID = uuid.NewString()
		}
		if _, err = tx.NamedExecContext(ctx, insertDancerStyleQuery, &styles[i]); err != nil {
			return translate(err, "create dancer style")
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create dancer: %w", err)
	}
	return nil
}

// Update writes the editable dancer columns.
func (r *DancerRepository) Update(ctx context.Context, dancer *models.Dancer) error {
	const query = `UPDATE dancers SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
        date_of_birth = :date_of_birth, gender = :gender, height_cm = :height_cm, weight_kg = :weight_kg,
        experience_level = :experience_level, emergency_contact_name = :emergency_contact_name,
        emergency_contact_phone = :emergency_contact_phone, medical_notes = :medical_notes, notes = :notes,
        is_active = :is_active, last_modified_at = :last_modified_at, last_modified_by = :last_modified_by
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, dancer)
	if err != nil {
		return translate(err, "update dancer")
	}
	return expectAffected(res)
}

// List returns dancers ordered by last then first name.
func (r *DancerRepository) List(ctx context.Context, filter models.DancerFilter) ([]models.Dancer, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Gender != nil {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", len(args)+1))
		args = append(args, *filter.Gender)
	}
	if filter.MinExperience != nil {
		conditions = append(conditions, fmt.Sprintf("experience_level = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.MinExperience.AtLeast()))
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.MinAge != nil {
		conditions = append(conditions, fmt.Sprintf("date_of_birth <= $%d", len(args)+1))
		args = append(args, filter.Now.AddDate(-*filter.MinAge, 0, 0))
	}
	if filter.MaxAge != nil {
		conditions = append(conditions, fmt.Sprintf("date_of_birth > $%d", len(args)+1))
		args = append(args, filter.Now.AddDate(-(*filter.MaxAge + 1), 0, 0))
	}
	if filter.Style != nil {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM dancer_styles ds WHERE ds.dancer_id = dancers.id AND ds.style = $%d)", len(args)+1))
		args = append(args, *filter.Style)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalisePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM dancers%s ORDER BY last_name ASC, first_name ASC LIMIT %d OFFSET %d", dancerColumns, clause, size, offset)
	var dancers []models.Dancer
	if err := r.db.SelectContext(ctx, &dancers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list dancers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM dancers"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count dancers: %w", err)
	}
	return dancers, total, nil
}

// ListStyles returns a dancer's styles.
func (r *DancerRepository) ListStyles(ctx context.Context, dancerID string) ([]models.DancerStyle, error) {
	query := fmt.Sprintf("SELECT %s FROM dancer_styles WHERE dancer_id = $1 ORDER BY style ASC", dancerStyleColumns)
	var styles []models.DancerStyle
	if err := r.db.SelectContext(ctx, &styles, query, dancerID); err != nil {
		return nil, fmt.Errorf("list dancer styles: %w", err)
	}
	return styles, nil
}

// ListStylesByDancers loads styles for a page of dancers.
func (r *DancerRepository) ListStylesByDancers(ctx context.Context, dancerIDs []string) (map[string][]models.DancerStyle, error) {
	grouped := make(map[string][]models.DancerStyle, len(dancerIDs))
	if len(dancerIDs) == 0 {
		return grouped, nil
	}
	query := fmt.Sprintf("SELECT %s FROM dancer_styles WHERE dancer_id = ANY($1) ORDER BY dancer_id, style ASC", dancerStyleColumns)
	var styles []models.DancerStyle
	if err := r.db.SelectContext(ctx, &styles, query, pq.Array(dancerIDs)); err != nil {
		return nil, fmt.Errorf("list styles for dancers: %w", err)
	}
	for _, s := range styles {
		grouped[s.DancerID] = append(grouped[s.DancerID], s)
	}
	return grouped, nil
}

// AddStyle inserts a style; ErrDuplicate when the dancer already has it.
func (r *DancerRepository) AddStyle(ctx context.Context, style *models.DancerStyle) error {
	if style.ID == "" {
		style.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, insertDancerStyleQuery, style); err != nil {
		return translate(err, "add dancer style")
	}
	return nil
}

// RemoveStyle deletes a style owned by the dancer.
func (r *DancerRepository) RemoveStyle(ctx context.Context, dancerID, styleID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dancer_styles WHERE id = $1 AND dancer_id = $2`, styleID, dancerID)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("remove dancer style: %w", err)
	}
	return expectAffected(res)
}
