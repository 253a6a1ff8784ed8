package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

var dancerRowColumns = []string{"id", "first_name", "last_name", "email", "phone", "date_of_birth", "gender", "height_cm",
	"weight_kg", "experience_level", "emergency_contact_name", "emergency_contact_phone", "medical_notes", "notes",
	"joined_date", "is_active", "created_at", "created_by", "last_modified_at", "last_modified_by"}

func TestDancerRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	level := models.ExperienceAdvanced
	minAge := 18
	maxAge := 30
	style := models.DanceStyleSalsa

	rows := sqlmock.NewRows(dancerRowColumns).
		AddRow("d-1", "Ana", "Lee", "ana@example.com", nil, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "FEMALE", nil, nil,
			"PROFESSIONAL", nil, nil, nil, nil, now, true, now, "system", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE experience_level = ANY($1) AND date_of_birth <= $2 AND date_of_birth > $3 AND EXISTS (SELECT 1 FROM dancer_styles ds WHERE ds.dancer_id = dancers.id AND ds.style = $4) ORDER BY last_name ASC, first_name ASC")).
		WithArgs(pq.Array([]string{"ADVANCED", "PROFESSIONAL", "INSTRUCTOR"}), now.AddDate(-18, 0, 0), now.AddDate(-31, 0, 0), style).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dancers WHERE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	dancers, total, err := repo.List(context.Background(), models.DancerFilter{MinExperience: &level, MinAge: &minAge, MaxAge: &maxAge, Style: &style, Now: now})
	require.NoError(t, err)
	require.Len(t, dancers, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana Lee", dancers[0].FullName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDancerRepositoryAddStyleDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dancer_styles")).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.AddStyle(context.Background(), &models.DancerStyle{DancerID: "d-1", Style: models.DanceStyleTap})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDancerRepositoryEmailExists(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM dancers WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.EmailExists(context.Background(), "ana@example.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDancerRepositoryStylesByDancers(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM dancer_styles WHERE dancer_id = ANY($1)")).
		WithArgs(pq.Array([]string{"d-1", "d-2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "dancer_id", "style", "proficiency", "years_of_experience", "notes", "created_at", "created_by", "last_modified_at", "last_modified_by"}).
			AddRow("st-1", "d-1", "TAP", "EXPERT", 10, nil, now, "system", nil, nil))

	grouped, err := repo.ListStylesByDancers(context.Background(), []string{"d-1", "d-2"})
	require.NoError(t, err)
	assert.Len(t, grouped["d-1"], 1)
	assert.Empty(t, grouped["d-2"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDancerRepositoryCreateRollsBackOnStyleFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dancers")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dancer_styles")).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	dancer := &models.Dancer{FirstName: "Ana", LastName: "Lopez", Gender: models.GenderFemale}
	styles := []models.DancerStyle{{Style: models.DanceStyleSalsa}}
	err := repo.Create(context.Background(), dancer, styles)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.NotEmpty(t, dancer.ID)
	assert.Equal(t, dancer.ID, styles[0].DancerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDancerRepositoryCreateCommits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDancerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dancers")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &models.Dancer{FirstName: "Ben", LastName: "Ode"}, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
