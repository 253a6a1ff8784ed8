package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/export"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type rosterSource interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type attendanceSource interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendance, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered document ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders course rosters and attendance sheets.
type ExportService struct {
	courses     courseReader
	sessions    sessionReader
	enrollments rosterSource
	attendances attendanceSource
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(courses courseReader, sessions sessionReader, enrollments rosterSource, attendances attendanceSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		courses:     courses,
		sessions:    sessions,
		enrollments: enrollments,
		attendances: attendances,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// CourseRoster exports every enrollment of a course.
func (s *ExportService) CourseRoster(ctx context.Context, courseID string, format export.Format) (*ExportFile, error) {
	course, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	details, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("%s roster (%d/%d)", course.Name, course.EnrollmentCount, course.Capacity),
		Headers: []string{"Dancer", "Email", "Status", "Payment", "Amount Paid", "Enrolled At"},
		Rows:    make([][]string, 0, len(details)),
	}
	for _, d := range details {
		data.Rows = append(data.Rows, []string{
			d.DancerName,
			deref(d.DancerEmail),
			string(d.Status),
			string(d.PaymentStatus),
			strconv.FormatFloat(d.AmountPaid, 'f', 2, 64) + " " + course.Currency,
			d.EnrollmentDate.UTC().Format(time.RFC3339),
		})
	}
	return s.render(data, format, "roster-"+courseID)
}

// AttendanceSheet exports the attendance rows of one session.
func (s *ExportService) AttendanceSheet(ctx context.Context, sessionID string, format export.Format) (*ExportFile, error) {
	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.courses, session.CourseID)
	if err != nil {
		return nil, err
	}
	records, err := s.attendances.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("%s attendance %s", course.Name, session.StartTime.UTC().Format("2006-01-02 15:04")),
		Headers: []string{"Dancer", "Status", "Recorded At", "Notes"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		data.Rows = append(data.Rows, []string{
			r.DancerName,
			string(r.Status),
			r.RecordedAt.UTC().Format(time.RFC3339),
			deref(r.Notes),
		})
	}
	return s.render(data, format, "attendance-"+sessionID)
}

func (s *ExportService) render(data export.Dataset, format export.Format, name string) (*ExportFile, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case export.FormatCSV:
		payload, err = s.csv.Render(data)
	case export.FormatPDF:
		payload, err = s.pdf.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("export rendered", zap.String("name", name), zap.String("format", string(format)), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Filename:    name + "." + format.Extension(),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
