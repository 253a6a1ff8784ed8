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

type dancerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Dancer, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, dancer *models.Dancer, styles []models.DancerStyle) error
	Update(ctx context.Context, dancer *models.Dancer) error
	List(ctx context.Context, filter models.DancerFilter) ([]models.Dancer, int, error)
	ListStyles(ctx context.Context, dancerID string) ([]models.DancerStyle, error)
	ListStylesByDancers(ctx context.Context, dancerIDs []string) (map[string][]models.DancerStyle, error)
	AddStyle(ctx context.Context, style *models.DancerStyle) error
	RemoveStyle(ctx context.Context, dancerID, styleID string) error
}

// DancerService manages the dancer directory.
type DancerService struct {
	repo      dancerRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDancerService constructs DancerService.
func NewDancerService(repo dancerRepository, validate *validator.Validate, logger *zap.Logger) *DancerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DancerService{repo: repo, validator: validate, logger: logger, now: utcNow}
}

// Create registers a dancer with optional initial styles.
func (s *DancerService) Create(ctx context.Context, req dto.CreateDancerRequest, actor string) (*dto.DancerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dancer payload")
	}
	if req.Email != nil {
		if err := s.ensureUniqueEmail(ctx, *req.Email, ""); err != nil {
			return nil, err
		}
	}

	now := s.now()
	dancer := &models.Dancer{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 normaliseEmail(req.Email),
		Phone:                 req.Phone,
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		HeightCm:              req.HeightCm,
		WeightKg:              req.WeightKg,
		ExperienceLevel:       req.ExperienceLevel,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalNotes:          req.MedicalNotes,
		Notes:                 req.Notes,
		JoinedDate:            now,
		IsActive:              true,
	}
	if dancer.Gender == "" {
		dancer.Gender = models.GenderNotSpecified
	}
	if dancer.ExperienceLevel == "" {
		dancer.ExperienceLevel = models.ExperienceBeginner
	}
	dancer.Stamp(actor, now)

	styles := make([]models.DancerStyle, 0, len(req.Styles))
	for _, sr := range req.Styles {
		styles = append(styles, newDancerStyle(sr, actor, now))
	}

	if err := s.repo.Create(ctx, dancer, styles); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "dancer email or style already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dancer")
	}

	s.logger.Info("dancer created", zap.String("dancer_id", dancer.ID), zap.Int("styles", len(styles)))
	out := dto.NewDancerResponse(dancer, styles, now)
	return &out, nil
}

func newDancerStyle(req dto.AddDancerStyleRequest, actor string, now time.Time) models.DancerStyle {
	style := models.DancerStyle{
		Style:             req.Style,
		Proficiency:       req.Proficiency,
		YearsOfExperience: req.YearsOfExperience,
		Notes:             req.Notes,
	}
	if style.Proficiency == "" {
		style.Proficiency = models.ProficiencyBeginner
	}
	style.Stamp(actor, now)
	return style
}

func normaliseEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	return &trimmed
}

// Update applies a partial change to a dancer.
func (s *DancerService) Update(ctx context.Context, id string, req dto.UpdateDancerRequest, actor string) (*dto.DancerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dancer payload")
	}
	dancer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && (dancer.Email == nil || !strings.EqualFold(*req.Email, *dancer.Email)) {
		if err := s.ensureUniqueEmail(ctx, *req.Email, id); err != nil {
			return nil, err
		}
		dancer.Email = normaliseEmail(req.Email)
	}

	if req.FirstName != nil {
		dancer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		dancer.LastName = *req.LastName
	}
	if req.Phone != nil {
		dancer.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		dancer.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		dancer.Gender = *req.Gender
	}
	if req.HeightCm != nil {
		dancer.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		dancer.WeightKg = req.WeightKg
	}
	if req.ExperienceLevel != nil {
		dancer.ExperienceLevel = *req.ExperienceLevel
	}
	if req.EmergencyContactName != nil {
		dancer.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		dancer.EmergencyContactPhone = req.EmergencyContactPhone
	}
	if req.MedicalNotes != nil {
		dancer.MedicalNotes = req.MedicalNotes
	}
	if req.Notes != nil {
		dancer.Notes = req.Notes
	}
	if req.IsActive != nil {
		dancer.IsActive = *req.IsActive
	}

	now := s.now()
	dancer.Touch(actor, now)
	if err := s.repo.Update(ctx, dancer); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dancer not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "a dancer with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dancer")
	}

	styles, err := s.repo.ListStyles(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dancer styles")
	}
	s.logger.Info("dancer updated", zap.String("dancer_id", id))
	out := dto.NewDancerResponse(dancer, styles, now)
	return &out, nil
}

// Delete removes a dancer and their styles. Enrollment snapshots are kept.
func (s *DancerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "dancer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete dancer")
	}
	s.logger.Info("dancer deleted", zap.String("dancer_id", id))
	return nil
}

// Get returns a dancer with styles.
func (s *DancerService) Get(ctx context.Context, id string) (*dto.DancerResponse, error) {
	dancer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	styles, err := s.repo.ListStyles(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dancer styles")
	}
	out := dto.NewDancerResponse(dancer, styles, s.now())
	return &out, nil
}

// List searches the directory.
func (s *DancerService) List(ctx context.Context, filter models.DancerFilter) ([]dto.DancerResponse, *models.Pagination, error) {
	now := s.now()
	if filter.Now.IsZero() {
		filter.Now = now
	}
	dancers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dancers")
	}
	ids := make([]string, 0, len(dancers))
	for _, d := range dancers {
		ids = append(ids, d.ID)
	}
	grouped, err := s.repo.ListStylesByDancers(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dancer styles")
	}
	items := make([]dto.DancerResponse, 0, len(dancers))
	for i := range dancers {
		items = append(items, dto.NewDancerResponse(&dancers[i], grouped[dancers[i].ID], now))
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// AddStyle records a style for the dancer.
func (s *DancerService) AddStyle(ctx context.Context, dancerID string, req dto.AddDancerStyleRequest, actor string) (*dto.DancerStyleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid style payload")
	}
	exists, err := s.repo.Exists(ctx, dancerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dancer")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dancer not found")
	}

	style := newDancerStyle(req, actor, s.now())
	style.DancerID = dancerID
	if err := s.repo.AddStyle(ctx, &style); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "dancer already has this style")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add style")
	}
	s.logger.Info("dancer style added", zap.String("dancer_id", dancerID), zap.String("style", string(style.Style)))
	out := dto.NewDancerStyleResponse(&style)
	return &out, nil
}

// RemoveStyle deletes one of the dancer's styles.
func (s *DancerService) RemoveStyle(ctx context.Context, dancerID, styleID string) error {
	if err := s.repo.RemoveStyle(ctx, dancerID, styleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "dancer style not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove style")
	}
	return nil
}

func (s *DancerService) find(ctx context.Context, id string) (*models.Dancer, error) {
	dancer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dancer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dancer")
	}
	return dancer, nil
}

func (s *DancerService) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.EmailExists(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check dancer email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "a dancer with this email already exists")
	}
	return nil
}
