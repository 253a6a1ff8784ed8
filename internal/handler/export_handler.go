package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/service"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/export"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type exportService interface {
	CourseRoster(ctx context.Context, courseID string, format export.Format) (*service.ExportFile, error)
	AttendanceSheet(ctx context.Context, sessionID string, format export.Format) (*service.ExportFile, error)
}

// ExportHandler serves roster and attendance downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CourseRoster godoc
// @Summary Download course roster
// @Tags Exports
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *ExportHandler) CourseRoster(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf"))
		return
	}
	file, err := h.exports.CourseRoster(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}

// AttendanceSheet godoc
// @Summary Download session attendance sheet
// @Tags Exports
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/attendance-sheet [get]
func (h *ExportHandler) AttendanceSheet(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf"))
		return
	}
	file, err := h.exports.AttendanceSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
