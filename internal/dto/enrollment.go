package dto

import (
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// CreateEnrollmentRequest enrolls a dancer. Name and email are stored as a
// snapshot and never re-synced.
type CreateEnrollmentRequest struct {
	DancerID      string                  `json:"dancerId" validate:"required,max=64"`
	DancerName    string                  `json:"dancerName" validate:"required,max=200"`
	DancerEmail   *string                 `json:"dancerEmail" validate:"omitempty,email,max=255"`
	Status        models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED DROPPED WAITLISTED CANCELED"`
	PaymentStatus models.PaymentStatus    `json:"paymentStatus" validate:"omitempty,oneof=PENDING PAID PARTIALLY_PAID REFUNDED FAILED"`
	AmountPaid    float64                 `json:"amountPaid" validate:"min=0,max=10000"`
	Notes         *string                 `json:"notes" validate:"omitempty,max=500"`
}

// UpdateEnrollmentRequest carries a partial enrollment update.
type UpdateEnrollmentRequest struct {
	Status        *models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED DROPPED WAITLISTED CANCELED"`
	PaymentStatus *models.PaymentStatus    `json:"paymentStatus" validate:"omitempty,oneof=PENDING PAID PARTIALLY_PAID REFUNDED FAILED"`
	AmountPaid    *float64                 `json:"amountPaid" validate:"omitempty,min=0,max=10000"`
	Notes         *string                  `json:"notes" validate:"omitempty,max=500"`
}

// EnrollmentResponse is the public enrollment shape.
type EnrollmentResponse struct {
	ID              string                  `json:"id"`
	CourseID        string                  `json:"courseId"`
	CourseName      string                  `json:"courseName,omitempty"`
	CourseStartDate *time.Time              `json:"courseStartDate,omitempty"`
	DancerID        string                  `json:"dancerId"`
	DancerName      string                  `json:"dancerName"`
	DancerEmail     *string                 `json:"dancerEmail,omitempty"`
	EnrollmentDate  time.Time               `json:"enrollmentDate"`
	Status          models.EnrollmentStatus `json:"status"`
	PaymentStatus   models.PaymentStatus    `json:"paymentStatus"`
	AmountPaid      float64                 `json:"amountPaid"`
	Notes           *string                 `json:"notes,omitempty"`
	Audit           AuditResponse           `json:"audit"`
}

// NewEnrollmentResponse maps a bare enrollment.
func NewEnrollmentResponse(e *models.CourseEnrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:             e.ID,
		CourseID:       e.CourseID,
		DancerID:       e.DancerID,
		DancerName:     e.DancerName,
		DancerEmail:    e.DancerEmail,
		EnrollmentDate: e.EnrollmentDate,
		Status:         e.Status,
		PaymentStatus:  e.PaymentStatus,
		AmountPaid:     e.AmountPaid,
		Notes:          e.Notes,
		Audit:          NewAuditResponse(e.AuditFields),
	}
}

// NewEnrollmentDetailResponse maps an enrollment with course context.
func NewEnrollmentDetailResponse(d *models.EnrollmentDetail) EnrollmentResponse {
	resp := NewEnrollmentResponse(&d.CourseEnrollment)
	resp.CourseName = d.CourseName
	if !d.CourseStartDate.IsZero() {
		start := d.CourseStartDate
		resp.CourseStartDate = &start
	}
	return resp
}

// NewEnrollmentDetailList maps a listing.
func NewEnrollmentDetailList(details []models.EnrollmentDetail) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(details))
	for i := range details {
		out = append(out, NewEnrollmentDetailResponse(&details[i]))
	}
	return out
}
