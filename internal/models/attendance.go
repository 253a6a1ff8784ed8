package models

import "time"

// AttendanceStatus records presence for a session.
type AttendanceStatus string

const (
	AttendanceStatusUnknown AttendanceStatus = "UNKNOWN"
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusUnknown, AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// SessionAttendance is a per-session, per-dancer presence record.
type SessionAttendance struct {
	ID         string           `db:"id" json:"id"`
	SessionID  string           `db:"session_id" json:"session_id"`
	DancerID   string           `db:"dancer_id" json:"dancer_id"`
	DancerName string           `db:"dancer_name" json:"dancer_name"`
	Status     AttendanceStatus `db:"status" json:"status"`
	RecordedAt time.Time        `db:"recorded_at" json:"recorded_at"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	AuditFields
}
