package models

import "time"

// CourseSession is a single scheduled occurrence within a course.
type CourseSession struct {
	ID                 string    `db:"id" json:"id"`
	CourseID           string    `db:"course_id" json:"course_id"`
	StartTime          time.Time `db:"start_time" json:"start_time"`
	EndTime            time.Time `db:"end_time" json:"end_time"`
	Location           *string   `db:"location" json:"location,omitempty"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	IsCanceled         bool      `db:"is_canceled" json:"is_canceled"`
	CancellationReason *string   `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	AuditFields
}

// DurationMinutes is derived from the time range.
func (s *CourseSession) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}

func (s *CourseSession) HasStarted(now time.Time) bool {
	return !now.Before(s.StartTime)
}

func (s *CourseSession) HasEnded(now time.Time) bool {
	return now.After(s.EndTime)
}

// SetCanceled applies a cancellation change. Un-canceling always clears the
// stored reason, including one supplied alongside the change.
func (s *CourseSession) SetCanceled(canceled bool, reason *string) {
	s.IsCanceled = canceled
	if !canceled {
		s.CancellationReason = nil
		return
	}
	if reason != nil {
		s.CancellationReason = reason
	}
}
