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
	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.CourseEnrollment, takeSlot bool) error
	Update(ctx context.Context, id string, apply func(*models.CourseEnrollment) (models.SlotDelta, error)) (*models.CourseEnrollment, error)
	Delete(ctx context.Context, id string, holdsSlot func(models.EnrollmentStatus) bool) error
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	IsEnrolled(ctx context.Context, courseID, dancerID string) (bool, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	ListByDancer(ctx context.Context, dancerID string) ([]models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

// CapacityPolicy decides which enrollment statuses occupy a course slot.
type CapacityPolicy struct {
	// ReleaseOnDrop frees the slot of DROPPED and CANCELED enrollments.
	ReleaseOnDrop bool
}

// HoldsSlot reports whether an enrollment in status counts against capacity.
func (p CapacityPolicy) HoldsSlot(status models.EnrollmentStatus) bool {
	if !p.ReleaseOnDrop {
		return true
	}
	return status != models.EnrollmentStatusDropped && status != models.EnrollmentStatusCanceled
}

// Delta returns the counter adjustment for a status transition.
func (p CapacityPolicy) Delta(from, to models.EnrollmentStatus) models.SlotDelta {
	before, after := p.HoldsSlot(from), p.HoldsSlot(to)
	switch {
	case before && !after:
		return models.SlotRelease
	case !before && after:
		return models.SlotAcquire
	default:
		return models.SlotKeep
	}
}

// EnrollmentService keeps enrollments and the course counter consistent.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseReader
	policy    CapacityPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, policy CapacityPolicy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		policy:    policy,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       utcNow,
	}
}

// Create enrolls a dancer in a course.
func (s *EnrollmentService) Create(ctx context.Context, courseID string, req dto.CreateEnrollmentRequest, actor string) (resp *dto.EnrollmentResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordEnrollmentOperation("create", outcomeLabel(err))
		s.metrics.ObserveDBQuery("enrollment_create", time.Since(start))
	}()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	course, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.EnrollmentStatusActive
	}
	payment := req.PaymentStatus
	if payment == "" {
		payment = models.PaymentStatusPending
	}

	takeSlot := s.policy.HoldsSlot(status)
	if takeSlot && course.IsFull() {
		return nil, appErrors.Clone(appErrors.ErrCourseFull, "")
	}
	enrolled, err := s.repo.IsEnrolled(ctx, courseID, req.DancerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}

	now := s.now()
	enrollment := &models.CourseEnrollment{
		CourseID:       courseID,
		DancerID:       req.DancerID,
		DancerName:     req.DancerName,
		DancerEmail:    req.DancerEmail,
		EnrollmentDate: now,
		Status:         status,
		PaymentStatus:  payment,
		AmountPaid:     req.AmountPaid,
		Notes:          req.Notes,
	}
	enrollment.Stamp(actor, now)

	if err := s.repo.Create(ctx, enrollment, takeSlot); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, appErrors.Clone(appErrors.ErrCourseFull, "")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("dancer enrolled",
		zap.String("course_id", courseID),
		zap.String("dancer_id", req.DancerID),
		zap.String("enrollment_id", enrollment.ID),
		zap.Bool("holds_slot", takeSlot),
	)

	out := dto.NewEnrollmentResponse(enrollment)
	out.CourseName = course.Name
	startDate := course.StartDate
	out.CourseStartDate = &startDate
	return &out, nil
}

// Update applies a partial change. Under the release-on-drop policy status
// transitions move the course counter in the same transaction.
func (s *EnrollmentService) Update(ctx context.Context, id string, req dto.UpdateEnrollmentRequest, actor string) (resp *dto.EnrollmentResponse, err error) {
	defer func() {
		s.metrics.RecordEnrollmentOperation("update", outcomeLabel(err))
	}()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	now := s.now()
	updated, err := s.repo.Update(ctx, id, func(e *models.CourseEnrollment) (models.SlotDelta, error) {
		from := e.Status
		if req.Status != nil {
			e.Status = *req.Status
		}
		if req.PaymentStatus != nil {
			e.PaymentStatus = *req.PaymentStatus
		}
		if req.AmountPaid != nil {
			e.AmountPaid = *req.AmountPaid
		}
		if req.Notes != nil {
			e.Notes = req.Notes
		}
		e.Touch(actor, now)
		return s.policy.Delta(from, e.Status), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, appErrors.Clone(appErrors.ErrCourseFull, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	s.logger.Info("enrollment updated",
		zap.String("enrollment_id", id),
		zap.String("course_id", updated.CourseID),
		zap.String("status", string(updated.Status)),
	)
	out := dto.NewEnrollmentResponse(updated)
	return &out, nil
}

// Delete removes an enrollment and releases its slot.
func (s *EnrollmentService) Delete(ctx context.Context, id string) (err error) {
	defer func() {
		s.metrics.RecordEnrollmentOperation("delete", outcomeLabel(err))
	}()

	if err := s.repo.Delete(ctx, id, s.policy.HoldsSlot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.logger.Info("enrollment deleted", zap.String("enrollment_id", id))
	return nil
}

// Get returns an enrollment with course context.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	out := dto.NewEnrollmentDetailResponse(detail)
	return &out, nil
}

// ListForCourse returns the course roster ordered by dancer name.
func (s *EnrollmentService) ListForCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return nil, err
	}
	details, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course enrollments")
	}
	return dto.NewEnrollmentDetailList(details), nil
}

// ListForDancer returns a dancer's enrollments, most recent course first.
func (s *EnrollmentService) ListForDancer(ctx context.Context, dancerID string) ([]dto.EnrollmentResponse, error) {
	details, err := s.repo.ListByDancer(ctx, dancerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dancer enrollments")
	}
	return dto.NewEnrollmentDetailList(details), nil
}

// List searches enrollments.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]dto.EnrollmentResponse, *models.Pagination, error) {
	details, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return dto.NewEnrollmentDetailList(details), models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// IsEnrolled reports whether the dancer has any enrollment in the course.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, courseID, dancerID string) (bool, error) {
	enrolled, err := s.repo.IsEnrolled(ctx, courseID, dancerID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return enrolled, nil
}
