package dto

import (
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// RecordAttendanceRequest sets a dancer's status for a session. Omitted notes
// keep whatever was stored before.
type RecordAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=UNKNOWN PRESENT ABSENT LATE EXCUSED"`
	Notes  *string                 `json:"notes" validate:"omitempty,max=500"`
}

// AttendanceResponse is the public attendance shape.
type AttendanceResponse struct {
	ID         string                  `json:"id"`
	SessionID  string                  `json:"sessionId"`
	DancerID   string                  `json:"dancerId"`
	DancerName string                  `json:"dancerName"`
	Status     models.AttendanceStatus `json:"status"`
	RecordedAt time.Time               `json:"recordedAt"`
	Notes      *string                 `json:"notes,omitempty"`
	Audit      AuditResponse           `json:"audit"`
}

// RecordAttendanceResult tells the caller whether a row was created or updated.
type RecordAttendanceResult struct {
	Attendance AttendanceResponse `json:"attendance"`
	Created    bool               `json:"created"`
}

// NewAttendanceResponse maps an attendance record.
func NewAttendanceResponse(a *models.SessionAttendance) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID,
		SessionID:  a.SessionID,
		DancerID:   a.DancerID,
		DancerName: a.DancerName,
		Status:     a.Status,
		RecordedAt: a.RecordedAt,
		Notes:      a.Notes,
		Audit:      NewAuditResponse(a.AuditFields),
	}
}

// NewAttendanceList maps a session's attendance.
func NewAttendanceList(records []models.SessionAttendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for i := range records {
		out = append(out, NewAttendanceResponse(&records[i]))
	}
	return out
}
