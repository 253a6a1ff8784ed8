package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, attendance *models.SessionAttendance) (bool, error)
	FindBySessionAndDancer(ctx context.Context, sessionID, dancerID string) (*models.SessionAttendance, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendance, error)
	DeleteBySessionAndDancer(ctx context.Context, sessionID, dancerID string) error
}

type courseExistence interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type enrollmentLookup interface {
	FindByCourseAndDancer(ctx context.Context, courseID, dancerID string) (*models.CourseEnrollment, error)
}

// AttendanceService records per-session presence for enrolled dancers.
type AttendanceService struct {
	repo        attendanceRepository
	sessions    sessionReader
	courses     courseExistence
	enrollments enrollmentLookup
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions sessionReader, courses courseExistence, enrollments enrollmentLookup, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:        repo,
		sessions:    sessions,
		courses:     courses,
		enrollments: enrollments,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         utcNow,
	}
}

// Record creates or overwrites the attendance of a dancer for a session.
// Omitted notes keep the stored value.
func (s *AttendanceService) Record(ctx context.Context, sessionID, dancerID string, req dto.RecordAttendanceRequest, actor string) (*dto.RecordAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	exists, err := s.courses.Exists(ctx, session.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	enrollment, err := s.enrollments.FindByCourseAndDancer(ctx, session.CourseID, dancerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	now := s.now()
	record := &models.SessionAttendance{
		SessionID:  sessionID,
		DancerID:   dancerID,
		DancerName: enrollment.DancerName,
		Status:     req.Status,
		RecordedAt: now,
		Notes:      req.Notes,
	}
	record.Stamp(actor, now)
	record.Touch(actor, now)

	created, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.RecordAttendance(record.Status)
	s.logger.Info("attendance recorded",
		zap.String("session_id", sessionID),
		zap.String("dancer_id", dancerID),
		zap.String("status", string(record.Status)),
		zap.Bool("created", created),
	)

	return &dto.RecordAttendanceResult{Attendance: dto.NewAttendanceResponse(record), Created: created}, nil
}

// Delete removes a dancer's attendance record.
func (s *AttendanceService) Delete(ctx context.Context, sessionID, dancerID string) error {
	if _, err := loadSession(ctx, s.sessions, sessionID); err != nil {
		return err
	}
	if err := s.repo.DeleteBySessionAndDancer(ctx, sessionID, dancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	s.logger.Info("attendance deleted", zap.String("session_id", sessionID), zap.String("dancer_id", dancerID))
	return nil
}

// List returns a session's attendance ordered by dancer name.
func (s *AttendanceService) List(ctx context.Context, sessionID string) ([]dto.AttendanceResponse, error) {
	if _, err := loadSession(ctx, s.sessions, sessionID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return dto.NewAttendanceList(records), nil
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, sessionID, dancerID string) (*dto.AttendanceResponse, error) {
	if _, err := loadSession(ctx, s.sessions, sessionID); err != nil {
		return nil, err
	}
	record, err := s.repo.FindBySessionAndDancer(ctx, sessionID, dancerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	out := dto.NewAttendanceResponse(record)
	return &out, nil
}
