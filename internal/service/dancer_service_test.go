package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type mockDancerRepo struct {
	dancers    map[string]models.Dancer
	styles     map[string][]models.DancerStyle
	batchCalls int
	seq        int
}

func newMockDancerRepo() *mockDancerRepo {
	return &mockDancerRepo{dancers: map[string]models.Dancer{}, styles: map[string][]models.DancerStyle{}}
}

func (m *mockDancerRepo) FindByID(ctx context.Context, id string) (*models.Dancer, error) {
	if d, ok := m.dancers[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDancerRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.dancers[id]
	return ok, nil
}

func (m *mockDancerRepo) DeleteByID(ctx context.Context, id string) error {
	if _, ok := m.dancers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.dancers, id)
	delete(m.styles, id)
	return nil
}

func (m *mockDancerRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	for id, d := range m.dancers {
		if d.Email != nil && strings.EqualFold(*d.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDancerRepo) Create(ctx context.Context, dancer *models.Dancer, styles []models.DancerStyle) error {
	m.seq++
	dancer.ID = fmt.Sprintf("d-%d", m.seq)
	m.dancers[dancer.ID] = *dancer
	for i := range styles {
		styles[i].DancerID = dancer.ID
		styles[i].ID = fmt.Sprintf("st-%d-%d", m.seq, i)
	}
	m.styles[dancer.ID] = styles
	return nil
}

func (m *mockDancerRepo) Update(ctx context.Context, dancer *models.Dancer) error {
	if _, ok := m.dancers[dancer.ID]; !ok {
		return sql.ErrNoRows
	}
	m.dancers[dancer.ID] = *dancer
	return nil
}

func (m *mockDancerRepo) List(ctx context.Context, filter models.DancerFilter) ([]models.Dancer, int, error) {
	out := make([]models.Dancer, 0, len(m.dancers))
	for _, d := range m.dancers {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockDancerRepo) ListStyles(ctx context.Context, dancerID string) ([]models.DancerStyle, error) {
	return m.styles[dancerID], nil
}

func (m *mockDancerRepo) ListStylesByDancers(ctx context.Context, ids []string) (map[string][]models.DancerStyle, error) {
	m.batchCalls++
	out := map[string][]models.DancerStyle{}
	for _, id := range ids {
		out[id] = m.styles[id]
	}
	return out, nil
}

func (m *mockDancerRepo) AddStyle(ctx context.Context, style *models.DancerStyle) error {
	for _, existing := range m.styles[style.DancerID] {
		if existing.Style == style.Style {
			return fmt.Errorf("add dancer style: %w", repository.ErrDuplicate)
		}
	}
	style.ID = fmt.Sprintf("st-%d", len(m.styles[style.DancerID])+100)
	m.styles[style.DancerID] = append(m.styles[style.DancerID], *style)
	return nil
}

func (m *mockDancerRepo) RemoveStyle(ctx context.Context, dancerID, styleID string) error {
	list := m.styles[dancerID]
	for i, s := range list {
		if s.ID == styleID {
			m.styles[dancerID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newDancerFixture() (*DancerService, *mockDancerRepo) {
	repo := newMockDancerRepo()
	svc := NewDancerService(repo, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestDancerServiceCreate(t *testing.T) {
	svc, _ := newDancerFixture()
	dob := time.Date(2000, 3, 2, 0, 0, 0, 0, time.UTC)

	resp, err := svc.Create(context.Background(), dto.CreateDancerRequest{
		FirstName:   "Ana",
		LastName:    "Ruiz",
		Email:       strPtr("Ana@Example.com"),
		DateOfBirth: &dob,
		Styles:      []dto.AddDancerStyleRequest{{Style: models.DanceStyleTap, YearsOfExperience: 3}},
	}, "Front Desk")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", resp.FullName)
	require.NotNil(t, resp.Age)
	assert.Equal(t, 24, *resp.Age)
	assert.Equal(t, "ana@example.com", *resp.Email)
	assert.Equal(t, models.GenderNotSpecified, resp.Gender)
	assert.Equal(t, models.ExperienceBeginner, resp.ExperienceLevel)
	require.Len(t, resp.Styles, 1)
	assert.Equal(t, models.ProficiencyBeginner, resp.Styles[0].Proficiency)
	assert.True(t, resp.IsActive)
}

func TestDancerServiceEmailConflict(t *testing.T) {
	svc, _ := newDancerFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Ana", LastName: "Ruiz", Email: strPtr("ana@example.com")}, "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Other", LastName: "Ana", Email: strPtr("ANA@example.com")}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	second, err := svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Ben", LastName: "Ode"}, "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, dto.UpdateDancerRequest{Email: strPtr("ana@example.com")}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	same := "ana@example.com"
	level := models.ExperienceAdvanced
	updated, err := svc.Update(ctx, first.ID, dto.UpdateDancerRequest{Email: &same, ExperienceLevel: &level}, "Coach")
	require.NoError(t, err)
	assert.Equal(t, models.ExperienceAdvanced, updated.ExperienceLevel)
	assert.Equal(t, "Coach", *updated.Audit.LastModifiedBy)
}

func TestDancerServiceStyles(t *testing.T) {
	svc, repo := newDancerFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Ana", LastName: "Ruiz"}, "")
	require.NoError(t, err)

	style, err := svc.AddStyle(ctx, created.ID, dto.AddDancerStyleRequest{Style: models.DanceStyleJazz, Proficiency: models.ProficiencyExpert}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ProficiencyExpert, style.Proficiency)

	_, err = svc.AddStyle(ctx, created.ID, dto.AddDancerStyleRequest{Style: models.DanceStyleJazz}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = svc.AddStyle(ctx, "ghost", dto.AddDancerStyleRequest{Style: models.DanceStyleJazz}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.RemoveStyle(ctx, created.ID, style.ID))
	assert.Empty(t, repo.styles[created.ID])
	err = svc.RemoveStyle(ctx, created.ID, style.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDancerServiceListGetDelete(t *testing.T) {
	svc, repo := newDancerFixture()
	ctx := context.Background()
	a, err := svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Ana", LastName: "Ruiz"}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateDancerRequest{FirstName: "Ben", LastName: "Ode"}, "")
	require.NoError(t, err)

	items, pagination, err := svc.List(ctx, models.DancerFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, repo.batchCalls)
	assert.Equal(t, 2, pagination.Page)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", got.FullName)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.True(t, appErrors.Is(svc.Delete(ctx, a.ID), appErrors.ErrNotFound))
}
