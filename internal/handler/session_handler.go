package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type sessionService interface {
	Add(ctx context.Context, courseID string, req dto.CreateSessionRequest, actor string) (*dto.SessionResponse, error)
	Update(ctx context.Context, courseID, sessionID string, req dto.UpdateSessionRequest, actor string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, courseID, sessionID string) error
	List(ctx context.Context, courseID string) ([]dto.SessionResponse, error)
	Get(ctx context.Context, courseID, sessionID string, includeAttendances bool) (*dto.SessionResponse, error)
}

// SessionHandler exposes the sessions nested under a course.
type SessionHandler struct {
	sessions sessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List godoc
// @Summary List course sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sessionId path string true "Session ID"
// @Param includeAttendances query bool false "Embed attendance rows"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/sessions/{sessionId} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	include := boolQuery(c, "includeAttendances")
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"), c.Param("sessionId"), include != nil && *include)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Add godoc
// @Summary Schedule session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/sessions [post]
func (h *SessionHandler) Add(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	session, err := h.sessions.Add(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update or cancel session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/sessions/{sessionId} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	session, err := h.sessions.Update(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sessionId path string true "Session ID"
// @Success 204
// @Router /courses/{id}/sessions/{sessionId} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id"), c.Param("sessionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
