package dto

import (
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// CreateCourseRequest defines the payload for creating a course.
type CreateCourseRequest struct {
	Name            string                 `json:"name" validate:"required,max=100"`
	Description     *string                `json:"description" validate:"omitempty,max=1000"`
	DanceStyle      models.DanceStyle      `json:"danceStyle" validate:"required,oneof=BALLET CONTEMPORARY JAZZ HIP_HOP TAP BALLROOM LATIN SALSA BREAKDANCE FOLK MODERN SWING LYRICAL OTHER"`
	DifficultyLevel models.DifficultyLevel `json:"difficultyLevel" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	StartDate       time.Time              `json:"startDate" validate:"required"`
	EndDate         time.Time              `json:"endDate" validate:"required"`
	DurationMinutes int                    `json:"durationMinutes" validate:"min=10,max=240"`
	Capacity        int                    `json:"capacity" validate:"min=1,max=100"`
	Location        *string                `json:"location" validate:"omitempty,max=200"`
	InstructorID    *string                `json:"instructorId" validate:"omitempty,max=64"`
	InstructorName  *string                `json:"instructorName" validate:"omitempty,max=200"`
	Price           float64                `json:"price" validate:"min=0,max=10000"`
	Currency        string                 `json:"currency" validate:"omitempty,len=3,alpha"`
	Sessions        []CreateSessionRequest `json:"sessions" validate:"omitempty,dive"`
}

// UpdateCourseRequest carries a partial course update; nil fields are left unchanged.
type UpdateCourseRequest struct {
	Name            *string                 `json:"name" validate:"omitempty,min=1,max=100"`
	Description     *string                 `json:"description" validate:"omitempty,max=1000"`
	DanceStyle      *models.DanceStyle      `json:"danceStyle" validate:"omitempty,oneof=BALLET CONTEMPORARY JAZZ HIP_HOP TAP BALLROOM LATIN SALSA BREAKDANCE FOLK MODERN SWING LYRICAL OTHER"`
	DifficultyLevel *models.DifficultyLevel `json:"difficultyLevel" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	StartDate       *time.Time              `json:"startDate"`
	EndDate         *time.Time              `json:"endDate"`
	DurationMinutes *int                    `json:"durationMinutes" validate:"omitempty,min=10,max=240"`
	Capacity        *int                    `json:"capacity" validate:"omitempty,min=1,max=100"`
	Location        *string                 `json:"location" validate:"omitempty,max=200"`
	InstructorID    *string                 `json:"instructorId" validate:"omitempty,max=64"`
	InstructorName  *string                 `json:"instructorName" validate:"omitempty,max=200"`
	IsActive        *bool                   `json:"isActive"`
	Price           *float64                `json:"price" validate:"omitempty,min=0,max=10000"`
	Currency        *string                 `json:"currency" validate:"omitempty,len=3,alpha"`
}

// CourseResponse is a course with fields derived at response time.
type CourseResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Description     *string                `json:"description,omitempty"`
	DanceStyle      models.DanceStyle      `json:"danceStyle"`
	DifficultyLevel models.DifficultyLevel `json:"difficultyLevel"`
	StartDate       time.Time              `json:"startDate"`
	EndDate         time.Time              `json:"endDate"`
	DurationMinutes int                    `json:"durationMinutes"`
	Capacity        int                    `json:"capacity"`
	EnrollmentCount int                    `json:"enrollmentCount"`
	AvailableSpots  int                    `json:"availableSpots"`
	IsFull          bool                   `json:"isFull"`
	HasStarted      bool                   `json:"hasStarted"`
	HasEnded        bool                   `json:"hasEnded"`
	Location        *string                `json:"location,omitempty"`
	InstructorID    *string                `json:"instructorId,omitempty"`
	InstructorName  *string                `json:"instructorName,omitempty"`
	IsActive        bool                   `json:"isActive"`
	Price           float64                `json:"price"`
	Currency        string                 `json:"currency"`
	Sessions        []SessionResponse      `json:"sessions"`
	Audit           AuditResponse          `json:"audit"`
}

// AuditResponse exposes the audit columns.
type AuditResponse struct {
	CreatedAt      time.Time  `json:"createdAt"`
	CreatedBy      string     `json:"createdBy"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
	LastModifiedBy *string    `json:"lastModifiedBy,omitempty"`
}

// NewAuditResponse copies audit columns.
func NewAuditResponse(a models.AuditFields) AuditResponse {
	return AuditResponse{
		CreatedAt:      a.CreatedAt,
		CreatedBy:      a.CreatedBy,
		LastModifiedAt: a.LastModifiedAt,
		LastModifiedBy: a.LastModifiedBy,
	}
}

// NewCourseResponse maps a course and its sessions, evaluating derived flags at now.
func NewCourseResponse(course *models.Course, sessions []models.CourseSession, now time.Time) CourseResponse {
	resp := CourseResponse{
		ID:              course.ID,
		Name:            course.Name,
		Description:     course.Description,
		DanceStyle:      course.DanceStyle,
		DifficultyLevel: course.DifficultyLevel,
		StartDate:       course.StartDate,
		EndDate:         course.EndDate,
		DurationMinutes: course.DurationMinutes,
		Capacity:        course.Capacity,
		EnrollmentCount: course.EnrollmentCount,
		AvailableSpots:  course.AvailableSpots(),
		IsFull:          course.IsFull(),
		HasStarted:      course.HasStarted(now),
		HasEnded:        course.HasEnded(now),
		Location:        course.Location,
		InstructorID:    course.InstructorID,
		InstructorName:  course.InstructorName,
		IsActive:        course.IsActive,
		Price:           course.Price,
		Currency:        course.Currency,
		Sessions:        make([]SessionResponse, 0, len(sessions)),
		Audit:           NewAuditResponse(course.AuditFields),
	}
	for i := range sessions {
		resp.Sessions = append(resp.Sessions, NewSessionResponse(&sessions[i], now))
	}
	return resp
}
