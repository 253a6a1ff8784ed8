package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type enrollmentService interface {
	Create(ctx context.Context, courseID string, req dto.CreateEnrollmentRequest, actor string) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateEnrollmentRequest, actor string) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*dto.EnrollmentResponse, error)
	ListForCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error)
	ListForDancer(ctx context.Context, dancerID string) ([]dto.EnrollmentResponse, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]dto.EnrollmentResponse, *models.Pagination, error)
	IsEnrolled(ctx context.Context, courseID, dancerID string) (bool, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll dancer in course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope "COURSE_FULL or ALREADY_ENROLLED"
// @Router /courses/{id}/enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListForCourse godoc
// @Summary List course enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListForCourse(c *gin.Context) {
	items, err := h.enrollments.ListForCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Check godoc
// @Summary Check enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param dancerId query string true "Dancer ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments/check [get]
func (h *EnrollmentHandler) Check(c *gin.Context) {
	dancerID := strings.TrimSpace(c.Query("dancerId"))
	if dancerID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dancerId is required"))
		return
	}
	enrolled, err := h.enrollments.IsEnrolled(c.Request.Context(), c.Param("id"), dancerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"courseId": c.Param("id"), "dancerId": dancerID, "enrolled": enrolled}, nil)
}

// ListForDancer godoc
// @Summary List dancer enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Success 200 {object} response.Envelope
// @Router /dancers/{id}/enrollments [get]
func (h *EnrollmentHandler) ListForDancer(c *gin.Context) {
	items, err := h.enrollments.ListForDancer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// List godoc
// @Summary Search enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course"
// @Param dancerId query string false "Dancer"
// @Param status query string false "Enrollment status"
// @Param paymentStatus query string false "Payment status"
// @Param enrolledFrom query string false "Enrollment date lower bound"
// @Param enrolledTo query string false "Enrollment date upper bound"
// @Param search query string false "Dancer or course name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter, err := enrollmentFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

func enrollmentFilterFromQuery(c *gin.Context) (models.EnrollmentFilter, error) {
	var (
		filter models.EnrollmentFilter
		err    error
	)
	filter.CourseID = c.Query("courseId")
	filter.DancerID = c.Query("dancerId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if filter.Status, err = enumQuery(c, "status", models.EnrollmentStatuses()...); err != nil {
		return filter, err
	}
	if filter.PaymentStatus, err = enumQuery(c, "paymentStatus", models.PaymentStatuses()...); err != nil {
		return filter, err
	}
	if filter.EnrolledFrom, err = timeQuery(c, "enrolledFrom"); err != nil {
		return filter, err
	}
	if filter.EnrolledTo, err = timeQuery(c, "enrolledTo"); err != nil {
		return filter, err
	}
	filter.Page, filter.PageSize = pageParams(c)
	return filter, nil
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Update godoc
// @Summary Update enrollment status or payment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpdateEnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Delete godoc
// @Summary Delete enrollment
// @Description Frees the course slot
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
