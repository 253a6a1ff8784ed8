package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/service"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/export"
)

type exportServiceMock struct {
	lastFormat export.Format
	called     bool
}

func (m *exportServiceMock) CourseRoster(ctx context.Context, courseID string, format export.Format) (*service.ExportFile, error) {
	m.called = true
	m.lastFormat = format
	return &service.ExportFile{Filename: "roster-" + courseID + "." + format.Extension(), ContentType: format.ContentType(), Data: []byte("Dancer\n")}, nil
}

func (m *exportServiceMock) AttendanceSheet(ctx context.Context, sessionID string, format export.Format) (*service.ExportFile, error) {
	m.called = true
	return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

func TestExportHandlerCourseRoster(t *testing.T) {
	svc := &exportServiceMock{}
	c, w := newTestContext(http.MethodGet, "/courses/c-1/roster", "", param("id", "c-1"))
	NewExportHandler(svc).CourseRoster(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, svc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="roster-c-1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Dancer\n", w.Body.String())
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	svc := &exportServiceMock{}
	c, w := newTestContext(http.MethodGet, "/courses/c-1/roster?format=docx", "", param("id", "c-1"))
	NewExportHandler(svc).CourseRoster(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)
}

func TestExportHandlerAttendanceSheetNotFound(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/sessions/s-9/attendance-sheet?format=pdf", "", param("id", "s-9"))
	NewExportHandler(&exportServiceMock{}).AttendanceSheet(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
