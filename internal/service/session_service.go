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

type sessionRepository interface {
	FindInCourse(ctx context.Context, courseID, sessionID string) (*models.CourseSession, error)
	Create(ctx context.Context, session *models.CourseSession) error
	Update(ctx context.Context, session *models.CourseSession) error
	DeleteInCourse(ctx context.Context, courseID, sessionID string) error
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseSession, error)
}

type sessionAttendanceLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendance, error)
}

// SessionService schedules sessions inside course date ranges.
type SessionService struct {
	repo        sessionRepository
	courses     courseReader
	attendances sessionAttendanceLister
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(repo sessionRepository, courses courseReader, attendances sessionAttendanceLister, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:        repo,
		courses:     courses,
		attendances: attendances,
		validator:   validate,
		logger:      logger,
		now:         utcNow,
	}
}

// checkSessionWindow validates a complete time range against the course dates.
func checkSessionWindow(course *models.Course, start, end time.Time) error {
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "")
	}
	if !course.Contains(start, end) {
		return appErrors.Clone(appErrors.ErrOutOfBounds, "")
	}
	return nil
}

// checkSessionChange validates a partial time change. Only the supplied
// bound is checked against the course; the other side comes from current.
func checkSessionChange(course *models.Course, current *models.CourseSession, start, end *time.Time) error {
	switch {
	case start != nil && end != nil:
		return checkSessionWindow(course, *start, *end)
	case start != nil:
		if !current.EndTime.After(*start) {
			return appErrors.Clone(appErrors.ErrInvalidRange, "")
		}
		if start.Before(course.StartDate) {
			return appErrors.Clone(appErrors.ErrOutOfBounds, "session must start after course start date")
		}
	case end != nil:
		if !end.After(current.StartTime) {
			return appErrors.Clone(appErrors.ErrInvalidRange, "")
		}
		if end.After(course.EndDate) {
			return appErrors.Clone(appErrors.ErrOutOfBounds, "session must end before course end date")
		}
	}
	return nil
}

// Add schedules a new session. Location falls back to the course location.
func (s *SessionService) Add(ctx context.Context, courseID string, req dto.CreateSessionRequest, actor string) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	course, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if err := checkSessionWindow(course, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	now := s.now()
	session := newSession(course, req, actor, now)
	if err := s.repo.Create(ctx, &session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.logger.Info("session added", zap.String("course_id", courseID), zap.String("session_id", session.ID))
	out := dto.NewSessionResponse(&session, now)
	return &out, nil
}

func newSession(course *models.Course, req dto.CreateSessionRequest, actor string, now time.Time) models.CourseSession {
	location := req.Location
	if location == nil {
		location = course.Location
	}
	session := models.CourseSession{
		CourseID:  course.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  location,
		Notes:     req.Notes,
	}
	session.Stamp(actor, now)
	return session
}

// Update applies a partial change to a session of the course.
func (s *SessionService) Update(ctx context.Context, courseID, sessionID string, req dto.UpdateSessionRequest, actor string) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	course, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	session, err := s.find(ctx, courseID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkSessionChange(course, session, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}
	if req.Location != nil {
		session.Location = req.Location
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}
	if req.IsCanceled != nil {
		session.SetCanceled(*req.IsCanceled, req.CancellationReason)
	}

	now := s.now()
	session.Touch(actor, now)
	if err := s.repo.Update(ctx, session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	s.logger.Info("session updated",
		zap.String("course_id", courseID),
		zap.String("session_id", sessionID),
		zap.Bool("canceled", session.IsCanceled),
	)
	out := dto.NewSessionResponse(session, now)
	return &out, nil
}

// Delete removes a session; its attendance goes with it.
func (s *SessionService) Delete(ctx context.Context, courseID, sessionID string) error {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return err
	}
	if err := s.repo.DeleteInCourse(ctx, courseID, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.logger.Info("session deleted", zap.String("course_id", courseID), zap.String("session_id", sessionID))
	return nil
}

// List returns the course sessions in start order.
func (s *SessionService) List(ctx context.Context, courseID string) ([]dto.SessionResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	now := s.now()
	out := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.NewSessionResponse(&sessions[i], now))
	}
	return out, nil
}

// Get returns one session, optionally with its attendance.
func (s *SessionService) Get(ctx context.Context, courseID, sessionID string, includeAttendances bool) (*dto.SessionResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return nil, err
	}
	session, err := s.find(ctx, courseID, sessionID)
	if err != nil {
		return nil, err
	}
	out := dto.NewSessionResponse(session, s.now())
	if includeAttendances {
		records, err := s.attendances.ListBySession(ctx, sessionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		out.Attendances = dto.NewAttendanceList(records)
	}
	return &out, nil
}

func (s *SessionService) find(ctx context.Context, courseID, sessionID string) (*models.CourseSession, error) {
	session, err := s.repo.FindInCourse(ctx, courseID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}
