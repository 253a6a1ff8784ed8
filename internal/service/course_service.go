package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course, sessions []models.CourseSession) error
	Update(ctx context.Context, course *models.Course) error
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
}

type courseSessionLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseSession, error)
	ListByCourses(ctx context.Context, courseIDs []string) (map[string][]models.CourseSession, error)
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	sessions  courseSessionLister
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, sessions courseSessionLister, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, sessions: sessions, validator: validate, logger: logger, now: utcNow}
}

// Create adds a course and its initial sessions atomically.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest, actor string) (*dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "end date must be after start date")
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = models.DefaultCurrency
	}
	now := s.now()
	course := &models.Course{
		Name:            req.Name,
		Description:     req.Description,
		DanceStyle:      req.DanceStyle,
		DifficultyLevel: req.DifficultyLevel,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		Location:        req.Location,
		InstructorID:    req.InstructorID,
		InstructorName:  req.InstructorName,
		IsActive:        true,
		Price:           req.Price,
		Currency:        currency,
	}
	course.Stamp(actor, now)

	sessions := make([]models.CourseSession, 0, len(req.Sessions))
	for _, sr := range req.Sessions {
		if err := checkSessionWindow(course, sr.StartTime, sr.EndTime); err != nil {
			return nil, err
		}
		sessions = append(sessions, newSession(course, sr, actor, now))
	}

	if err := s.repo.Create(ctx, course, sessions); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("name", course.Name),
		zap.Int("sessions", len(sessions)),
	)
	out := dto.NewCourseResponse(course, sessions, now)
	return &out, nil
}

// Update applies a partial change to a course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest, actor string) (*dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := loadCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && !strings.EqualFold(*req.Name, course.Name) {
		if err := s.ensureUniqueName(ctx, *req.Name, id); err != nil {
			return nil, err
		}
	}
	if err := checkCourseDates(course, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	applyCourseChanges(course, req)
	now := s.now()
	course.Touch(actor, now)

	if err := s.repo.Update(ctx, course); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	sessions, err := s.sessions.ListByCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	s.logger.Info("course updated", zap.String("course_id", id))
	out := dto.NewCourseResponse(course, sessions, now)
	return &out, nil
}

func checkCourseDates(course *models.Course, start, end *time.Time) error {
	switch {
	case start != nil && end != nil:
		if !end.After(*start) {
			return appErrors.Clone(appErrors.ErrInvalidRange, "end date must be after start date")
		}
	case start != nil:
		if !start.Before(course.EndDate) {
			return appErrors.Clone(appErrors.ErrInvalidRange, "start date must be before end date")
		}
	case end != nil:
		if !end.After(course.StartDate) {
			return appErrors.Clone(appErrors.ErrInvalidRange, "end date must be after start date")
		}
	}
	return nil
}

func applyCourseChanges(course *models.Course, req dto.UpdateCourseRequest) {
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.DanceStyle != nil {
		course.DanceStyle = *req.DanceStyle
	}
	if req.DifficultyLevel != nil {
		course.DifficultyLevel = *req.DifficultyLevel
	}
	if req.StartDate != nil {
		course.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		course.EndDate = *req.EndDate
	}
	if req.DurationMinutes != nil {
		course.DurationMinutes = *req.DurationMinutes
	}
	if req.Capacity != nil {
		course.Capacity = *req.Capacity
	}
	if req.Location != nil {
		course.Location = req.Location
	}
	if req.InstructorID != nil {
		course.InstructorID = req.InstructorID
	}
	if req.InstructorName != nil {
		course.InstructorName = req.InstructorName
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Currency != nil {
		course.Currency = strings.ToUpper(*req.Currency)
	}
}

// Delete removes a course together with its sessions, enrollments and attendance.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// Get returns a course with its sessions.
func (s *CourseService) Get(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	out := dto.NewCourseResponse(course, sessions, s.now())
	return &out, nil
}

// List searches the catalog. Sessions for the page are loaded in one query.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseResponse, *models.Pagination, error) {
	now := s.now()
	if filter.Now.IsZero() {
		filter.Now = now
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	grouped, err := s.sessions.ListByCourses(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, dto.NewCourseResponse(&courses[i], grouped[courses[i].ID], now))
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *CourseService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "a course with this name already exists")
	}
	return nil
}
