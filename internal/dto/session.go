package dto

import (
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// CreateSessionRequest schedules a session inside a course.
type CreateSessionRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Location  *string   `json:"location" validate:"omitempty,max=200"`
	Notes     *string   `json:"notes" validate:"omitempty,max=500"`
}

// UpdateSessionRequest carries a partial session update. Sending
// isCanceled=false always clears the cancellation reason.
type UpdateSessionRequest struct {
	StartTime          *time.Time `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	Location           *string    `json:"location" validate:"omitempty,max=200"`
	Notes              *string    `json:"notes" validate:"omitempty,max=500"`
	IsCanceled         *bool      `json:"isCanceled"`
	CancellationReason *string    `json:"cancellationReason" validate:"omitempty,max=500"`
}

// SessionResponse is a session with derived timing fields.
type SessionResponse struct {
	ID                 string               `json:"id"`
	CourseID           string               `json:"courseId"`
	StartTime          time.Time            `json:"startTime"`
	EndTime            time.Time            `json:"endTime"`
	DurationMinutes    int                  `json:"durationMinutes"`
	HasStarted         bool                 `json:"hasStarted"`
	HasEnded           bool                 `json:"hasEnded"`
	Location           *string              `json:"location,omitempty"`
	Notes              *string              `json:"notes,omitempty"`
	IsCanceled         bool                 `json:"isCanceled"`
	CancellationReason *string              `json:"cancellationReason,omitempty"`
	Attendances        []AttendanceResponse `json:"attendances,omitempty"`
	Audit              AuditResponse        `json:"audit"`
}

// NewSessionResponse maps a session evaluating derived fields at now.
func NewSessionResponse(session *models.CourseSession, now time.Time) SessionResponse {
	return SessionResponse{
		ID:                 session.ID,
		CourseID:           session.CourseID,
		StartTime:          session.StartTime,
		EndTime:            session.EndTime,
		DurationMinutes:    session.DurationMinutes(),
		HasStarted:         session.HasStarted(now),
		HasEnded:           session.HasEnded(now),
		Location:           session.Location,
		Notes:              session.Notes,
		IsCanceled:         session.IsCanceled,
		CancellationReason: session.CancellationReason,
		Audit:              NewAuditResponse(session.AuditFields),
	}
}
