package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type courseServiceMock struct {
	lastFilter models.CourseFilter
	lastCreate dto.CreateCourseRequest
	lastActor  string
	err        error
}

func (m *courseServiceMock) Create(ctx context.Context, req dto.CreateCourseRequest, actor string) (*dto.CourseResponse, error) {
	m.lastCreate = req
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CourseResponse{ID: "c-1", Name: req.Name}, nil
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req dto.UpdateCourseRequest, actor string) (*dto.CourseResponse, error) {
	return &dto.CourseResponse{ID: id}, m.err
}

func (m *courseServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func (m *courseServiceMock) Get(ctx context.Context, id string) (*dto.CourseResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CourseResponse{ID: id}, nil
}

func (m *courseServiceMock) List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseResponse, *models.Pagination, error) {
	m.lastFilter = filter
	return []dto.CourseResponse{{ID: "c-1"}}, models.NewPagination(filter.Page, filter.PageSize, 1), m.err
}

func TestCourseHandlerListParsesFilter(t *testing.T) {
	svc := &courseServiceMock{}
	c, w := newTestContext(http.MethodGet, "/courses?search=%20salsa%20&danceStyle=salsa&isActive=true&hasAvailableSpots=1&futureOnly=true&startFrom=2025-01-06&page=2&limit=5", "")

	NewCourseHandler(svc).List(c)
	require.Equal(t, http.StatusOK, w.Code)

	f := svc.lastFilter
	assert.Equal(t, "salsa", f.Search)
	require.NotNil(t, f.DanceStyle)
	assert.Equal(t, models.DanceStyleSalsa, *f.DanceStyle)
	require.NotNil(t, f.IsActive)
	assert.True(t, *f.IsActive)
	require.NotNil(t, f.HasAvailableSpots)
	assert.True(t, f.FutureOnly)
	require.NotNil(t, f.StartFrom)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), *f.StartFrom)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.PageSize)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestCourseHandlerListRejectsBadQuery(t *testing.T) {
	for _, target := range []string{"/courses?danceStyle=polka", "/courses?startTo=yesterday"} {
		c, w := newTestContext(http.MethodGet, target, "")
		NewCourseHandler(&courseServiceMock{}).List(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestCourseHandlerCreate(t *testing.T) {
	svc := &courseServiceMock{}
	body := `{"name":"Salsa Basics","danceStyle":"SALSA","difficultyLevel":"BEGINNER","startDate":"2025-01-06T00:00:00Z","endDate":"2025-02-06T00:00:00Z","durationMinutes":60,"capacity":10,"price":80}`
	c, w := newTestContext(http.MethodPost, "/courses", body)

	NewCourseHandler(svc).Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Salsa Basics", svc.lastCreate.Name)
	assert.Equal(t, "Lia Moss", svc.lastActor)

	c, w = newTestContext(http.MethodPost, "/courses", `{"name":`)
	NewCourseHandler(svc).Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerMapsServiceErrors(t *testing.T) {
	svc := &courseServiceMock{err: appErrors.Clone(appErrors.ErrInvalidRange, "end date must be after start date")}
	c, w := newTestContext(http.MethodPut, "/courses/c-1", `{"capacity":5}`, param("id", "c-1"))

	NewCourseHandler(svc).Update(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_RANGE", env.Error.Code)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "course not found")
	c, w = newTestContext(http.MethodDelete, "/courses/c-9", "", param("id", "c-9"))
	NewCourseHandler(svc).Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.err = nil
	c, w = newTestContext(http.MethodDelete, "/courses/c-1", "", param("id", "c-1"))
	NewCourseHandler(svc).Delete(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
