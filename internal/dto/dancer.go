package dto

import (
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// CreateDancerRequest registers a dancer in the directory.
type CreateDancerRequest struct {
	FirstName             string                  `json:"firstName" validate:"required,max=100"`
	LastName              string                  `json:"lastName" validate:"required,max=100"`
	Email                 *string                 `json:"email" validate:"omitempty,email,max=255"`
	Phone                 *string                 `json:"phone" validate:"omitempty,max=50"`
	DateOfBirth           *time.Time              `json:"dateOfBirth"`
	Gender                models.Gender           `json:"gender" validate:"omitempty,oneof=NOT_SPECIFIED MALE FEMALE NON_BINARY OTHER"`
	HeightCm              *float64                `json:"heightCm" validate:"omitempty,gt=0,lte=300"`
	WeightKg              *float64                `json:"weightKg" validate:"omitempty,gt=0,lte=500"`
	ExperienceLevel       models.ExperienceLevel  `json:"experienceLevel" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED PROFESSIONAL INSTRUCTOR"`
	EmergencyContactName  *string                 `json:"emergencyContactName" validate:"omitempty,max=200"`
	EmergencyContactPhone *string                 `json:"emergencyContactPhone" validate:"omitempty,max=50"`
	MedicalNotes          *string                 `json:"medicalNotes" validate:"omitempty,max=1000"`
	Notes                 *string                 `json:"notes" validate:"omitempty,max=1000"`
	Styles                []AddDancerStyleRequest `json:"styles" validate:"omitempty,dive"`
}

// UpdateDancerRequest carries a partial dancer update.
type UpdateDancerRequest struct {
	FirstName             *string                 `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName              *string                 `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email                 *string                 `json:"email" validate:"omitempty,email,max=255"`
	Phone                 *string                 `json:"phone" validate:"omitempty,max=50"`
	DateOfBirth           *time.Time              `json:"dateOfBirth"`
	Gender                *models.Gender          `json:"gender" validate:"omitempty,oneof=NOT_SPECIFIED MALE FEMALE NON_BINARY OTHER"`
	HeightCm              *float64                `json:"heightCm" validate:"omitempty,gt=0,lte=300"`
	WeightKg              *float64                `json:"weightKg" validate:"omitempty,gt=0,lte=500"`
	ExperienceLevel       *models.ExperienceLevel `json:"experienceLevel" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED PROFESSIONAL INSTRUCTOR"`
	EmergencyContactName  *string                 `json:"emergencyContactName" validate:"omitempty,max=200"`
	EmergencyContactPhone *string                 `json:"emergencyContactPhone" validate:"omitempty,max=50"`
	MedicalNotes          *string                 `json:"medicalNotes" validate:"omitempty,max=1000"`
	Notes                 *string                 `json:"notes" validate:"omitempty,max=1000"`
	IsActive              *bool                   `json:"isActive"`
}

// AddDancerStyleRequest records proficiency in a style.
type AddDancerStyleRequest struct {
	Style             models.DanceStyle       `json:"style" validate:"required,oneof=BALLET CONTEMPORARY JAZZ HIP_HOP TAP BALLROOM LATIN SALSA BREAKDANCE FOLK MODERN SWING LYRICAL OTHER"`
	Proficiency       models.ProficiencyLevel `json:"proficiency" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED EXPERT"`
	YearsOfExperience int                     `json:"yearsOfExperience" validate:"min=0,max=100"`
	Notes             *string                 `json:"notes" validate:"omitempty,max=500"`
}

// DancerStyleResponse is one style entry.
type DancerStyleResponse struct {
	ID                string                  `json:"id"`
	Style             models.DanceStyle       `json:"style"`
	Proficiency       models.ProficiencyLevel `json:"proficiency"`
	YearsOfExperience int                     `json:"yearsOfExperience"`
	Notes             *string                 `json:"notes,omitempty"`
}

// DancerResponse is the public dancer shape.
type DancerResponse struct {
	ID                    string                 `json:"id"`
	FirstName             string                 `json:"firstName"`
	LastName              string                 `json:"lastName"`
	FullName              string                 `json:"fullName"`
	Email                 *string                `json:"email,omitempty"`
	Phone                 *string                `json:"phone,omitempty"`
	DateOfBirth           *time.Time             `json:"dateOfBirth,omitempty"`
	Age                   *int                   `json:"age,omitempty"`
	Gender                models.Gender          `json:"gender"`
	HeightCm              *float64               `json:"heightCm,omitempty"`
	WeightKg              *float64               `json:"weightKg,omitempty"`
	ExperienceLevel       models.ExperienceLevel `json:"experienceLevel"`
	EmergencyContactName  *string                `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string                `json:"emergencyContactPhone,omitempty"`
	MedicalNotes          *string                `json:"medicalNotes,omitempty"`
	Notes                 *string                `json:"notes,omitempty"`
	JoinedDate            time.Time              `json:"joinedDate"`
	IsActive              bool                   `json:"isActive"`
	Styles                []DancerStyleResponse  `json:"styles"`
	Audit                 AuditResponse          `json:"audit"`
}

// NewDancerStyleResponse maps a style row.
func NewDancerStyleResponse(s *models.DancerStyle) DancerStyleResponse {
	return DancerStyleResponse{
		ID:                s.ID,
		Style:             s.Style,
		Proficiency:       s.Proficiency,
		YearsOfExperience: s.YearsOfExperience,
		Notes:             s.Notes,
	}
}

// NewDancerResponse maps a dancer with styles; age is computed at now.
func NewDancerResponse(d *models.Dancer, styles []models.DancerStyle, now time.Time) DancerResponse {
	resp := DancerResponse{
		ID:                    d.ID,
		FirstName:             d.FirstName,
		LastName:              d.LastName,
		FullName:              d.FullName(),
		Email:                 d.Email,
		Phone:                 d.Phone,
		DateOfBirth:           d.DateOfBirth,
		Age:                   d.Age(now),
		Gender:                d.Gender,
		HeightCm:              d.HeightCm,
		WeightKg:              d.WeightKg,
		ExperienceLevel:       d.ExperienceLevel,
		EmergencyContactName:  d.EmergencyContactName,
		EmergencyContactPhone: d.EmergencyContactPhone,
		MedicalNotes:          d.MedicalNotes,
		Notes:                 d.Notes,
		JoinedDate:            d.JoinedDate,
		IsActive:              d.IsActive,
		Styles:                make([]DancerStyleResponse, 0, len(styles)),
		Audit:                 NewAuditResponse(d.AuditFields),
	}
	for i := range styles {
		resp.Styles = append(resp.Styles, NewDancerStyleResponse(&styles[i]))
	}
	return resp
}
