package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type courseService interface {
	Create(ctx context.Context, req dto.CreateCourseRequest, actor string) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateCourseRequest, actor string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseResponse, *models.Pagination, error)
}

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search name or description"
// @Param danceStyle query string false "Dance style"
// @Param difficultyLevel query string false "Difficulty level"
// @Param isActive query bool false "Active flag"
// @Param startFrom query string false "Start date lower bound (YYYY-MM-DD or RFC3339)"
// @Param startTo query string false "Start date upper bound"
// @Param instructorId query string false "Instructor"
// @Param hasAvailableSpots query bool false "Only courses with free spots"
// @Param futureOnly query bool false "Only courses starting after now"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter, err := courseFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

func courseFilterFromQuery(c *gin.Context) (models.CourseFilter, error) {
	var (
		filter models.CourseFilter
		err    error
	)
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.InstructorID = c.Query("instructorId")
	filter.IsActive = boolQuery(c, "isActive")
	filter.HasAvailableSpots = boolQuery(c, "hasAvailableSpots")
	if future := boolQuery(c, "futureOnly"); future != nil {
		filter.FutureOnly = *future
	}
	if filter.DanceStyle, err = enumQuery(c, "danceStyle", models.DanceStyles()...); err != nil {
		return filter, err
	}
	if filter.DifficultyLevel, err = enumQuery(c, "difficultyLevel", models.DifficultyLevels()...); err != nil {
		return filter, err
	}
	if filter.StartFrom, err = timeQuery(c, "startFrom"); err != nil {
		return filter, err
	}
	if filter.StartTo, err = timeQuery(c, "startTo"); err != nil {
		return filter, err
	}
	filter.Page, filter.PageSize = pageParams(c)
	return filter, nil
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Description Removes the course with its sessions, enrollments and attendance
// @Tags Courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
