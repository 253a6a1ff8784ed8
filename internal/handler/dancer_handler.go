package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type dancerService interface {
	Create(ctx context.Context, req dto.CreateDancerRequest, actor string) (*dto.DancerResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateDancerRequest, actor string) (*dto.DancerResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*dto.DancerResponse, error)
	List(ctx context.Context, filter models.DancerFilter) ([]dto.DancerResponse, *models.Pagination, error)
	AddStyle(ctx context.Context, dancerID string, req dto.AddDancerStyleRequest, actor string) (*dto.DancerStyleResponse, error)
	RemoveStyle(ctx context.Context, dancerID, styleID string) error
}

// DancerHandler exposes the dancer directory.
type DancerHandler struct {
	dancers dancerService
}

// NewDancerHandler constructs DancerHandler.
func NewDancerHandler(dancers dancerService) *DancerHandler {
	return &DancerHandler{dancers: dancers}
}

// List godoc
// @Summary List dancers
// @Tags Dancers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email"
// @Param gender query string false "Gender"
// @Param minExperience query string false "Minimum experience level"
// @Param isActive query bool false "Active flag"
// @Param minAge query int false "Minimum age"
// @Param maxAge query int false "Maximum age"
// @Param style query string false "Dance style"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /dancers [get]
func (h *DancerHandler) List(c *gin.Context) {
	filter, err := dancerFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dancers, pagination, err := h.dancers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dancers, pagination)
}

func dancerFilterFromQuery(c *gin.Context) (models.DancerFilter, error) {
	var (
		filter models.DancerFilter
		err    error
	)
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.IsActive = boolQuery(c, "isActive")
	if filter.Gender, err = enumQuery(c, "gender", models.Genders()...); err != nil {
		return filter, err
	}
	if filter.MinExperience, err = enumQuery(c, "minExperience", models.ExperienceLevels()...); err != nil {
		return filter, err
	}
	if filter.Style, err = enumQuery(c, "style", models.DanceStyles()...); err != nil {
		return filter, err
	}
	if filter.MinAge, err = intQuery(c, "minAge"); err != nil {
		return filter, err
	}
	if filter.MaxAge, err = intQuery(c, "maxAge"); err != nil {
		return filter, err
	}
	filter.Page, filter.PageSize = pageParams(c)
	return filter, nil
}

// Get godoc
// @Summary Get dancer
// @Tags Dancers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Success 200 {object} response.Envelope
// @Router /dancers/{id} [get]
func (h *DancerHandler) Get(c *gin.Context) {
	dancer, err := h.dancers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dancer, nil)
}

// Create godoc
// @Summary Create dancer
// @Tags Dancers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateDancerRequest true "Dancer payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dancers [post]
func (h *DancerHandler) Create(c *gin.Context) {
	var req dto.CreateDancerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	dancer, err := h.dancers.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dancer)
}

// Update godoc
// @Summary Update dancer
// @Tags Dancers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Param payload body dto.UpdateDancerRequest true "Dancer payload"
// @Success 200 {object} response.Envelope
// @Router /dancers/{id} [put]
func (h *DancerHandler) Update(c *gin.Context) {
	var req dto.UpdateDancerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	dancer, err := h.dancers.Update(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dancer, nil)
}

// Delete godoc
// @Summary Delete dancer
// @Tags Dancers
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Success 204
// @Router /dancers/{id} [delete]
func (h *DancerHandler) Delete(c *gin.Context) {
	if err := h.dancers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddStyle godoc
// @Summary Add dance style to dancer
// @Tags Dancers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Param payload body dto.AddDancerStyleRequest true "Style payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dancers/{id}/styles [post]
func (h *DancerHandler) AddStyle(c *gin.Context) {
	var req dto.AddDancerStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	style, err := h.dancers.AddStyle(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, style)
}

// RemoveStyle godoc
// @Summary Remove dance style from dancer
// @Tags Dancers
// @Security BearerAuth
// @Param id path string true "Dancer ID"
// @Param styleId path string true "Style ID"
// @Success 204
// @Router /dancers/{id}/styles/{styleId} [delete]
func (h *DancerHandler) RemoveStyle(c *gin.Context) {
	if err := h.dancers.RemoveStyle(c.Request.Context(), c.Param("id"), c.Param("styleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
