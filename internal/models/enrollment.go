package models

import "time"

// EnrollmentStatus represents the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive     EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped    EnrollmentStatus = "DROPPED"
	EnrollmentStatusWaitlisted EnrollmentStatus = "WAITLISTED"
	EnrollmentStatusCanceled   EnrollmentStatus = "CANCELED"
)

func EnrollmentStatuses() []EnrollmentStatus {
	return []EnrollmentStatus{
		EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped,
		EnrollmentStatusWaitlisted, EnrollmentStatusCanceled,
	}
}

// PaymentStatus tracks what the dancer has paid.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
	PaymentStatusFailed        PaymentStatus = "FAILED"
)

func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusRefunded, PaymentStatusFailed,
	}
}

// CourseEnrollment links a dancer to a course. Dancer name and email are a
// snapshot taken at enrollment time.
type CourseEnrollment struct {
	ID             string           `db:"id" json:"id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	DancerID       string           `db:"dancer_id" json:"dancer_id"`
	DancerName     string           `db:"dancer_name" json:"dancer_name"`
	DancerEmail    *string          `db:"dancer_email" json:"dancer_email,omitempty"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	PaymentStatus  PaymentStatus    `db:"payment_status" json:"payment_status"`
	AmountPaid     float64          `db:"amount_paid" json:"amount_paid"`
	Notes          *string          `db:"notes" json:"notes,omitempty"`
	AuditFields
}

// EnrollmentDetail adds course context for listings.
type EnrollmentDetail struct {
	CourseEnrollment
	CourseName      string    `db:"course_name" json:"course_name"`
	CourseStartDate time.Time `db:"course_start_date" json:"course_start_date"`
}

// EnrollmentFilter defines filters for enrollment searches.
type EnrollmentFilter struct {
	CourseID      string
	DancerID      string
	Status        *EnrollmentStatus
	PaymentStatus *PaymentStatus
	EnrolledFrom  *time.Time
	EnrolledTo    *time.Time
	Search        string
	Page          int
	PageSize      int
}

// SlotDelta describes how an update moves the course counter: -1 releases a
// slot, +1 takes one, 0 leaves it alone.
type SlotDelta int

const (
	SlotRelease SlotDelta = -1
	SlotKeep    SlotDelta = 0
	SlotAcquire SlotDelta = 1
)
