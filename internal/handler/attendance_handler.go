package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, sessionID, dancerID string, req dto.RecordAttendanceRequest, actor string) (*dto.RecordAttendanceResult, error)
	Delete(ctx context.Context, sessionID, dancerID string) error
	List(ctx context.Context, sessionID string) ([]dto.AttendanceResponse, error)
	Get(ctx context.Context, sessionID, dancerID string) (*dto.AttendanceResponse, error)
}

// AttendanceHandler exposes per-session attendance.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary List session attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	rows, err := h.attendance.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Get godoc
// @Summary Get attendance of one dancer
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param dancerId path string true "Dancer ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance/{dancerId} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	row, err := h.attendance.Get(c.Request.Context(), c.Param("id"), c.Param("dancerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Record godoc
// @Summary Record attendance
// @Description Creates the row on first call and overwrites status afterwards. Notes are kept when omitted.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param dancerId path string true "Dancer ID"
// @Param payload body dto.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope "NOT_ENROLLED"
// @Router /sessions/{id}/attendance/{dancerId} [put]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.attendance.Record(c.Request.Context(), c.Param("id"), c.Param("dancerId"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Created {
		response.Created(c, result.Attendance)
		return
	}
	response.JSON(c, http.StatusOK, result.Attendance, nil)
}

// Delete godoc
// @Summary Delete attendance
// @Tags Attendance
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param dancerId path string true "Dancer ID"
// @Success 204
// @Router /sessions/{id}/attendance/{dancerId} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id"), c.Param("dancerId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
