package models

import (
	"strings"
	"time"
)

// Gender is self-reported and optional.
type Gender string

const (
	GenderNotSpecified Gender = "NOT_SPECIFIED"
	GenderMale         Gender = "MALE"
	GenderFemale       Gender = "FEMALE"
	GenderNonBinary    Gender = "NON_BINARY"
	GenderOther        Gender = "OTHER"
)

func Genders() []Gender {
	return []Gender{GenderNotSpecified, GenderMale, GenderFemale, GenderNonBinary, GenderOther}
}

// ExperienceLevel is ordered from least to most experienced.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "BEGINNER"
	ExperienceIntermediate ExperienceLevel = "INTERMEDIATE"
	ExperienceAdvanced     ExperienceLevel = "ADVANCED"
	ExperienceProfessional ExperienceLevel = "PROFESSIONAL"
	ExperienceInstructor   ExperienceLevel = "INSTRUCTOR"
)

var experienceOrder = []ExperienceLevel{
	ExperienceBeginner,
	ExperienceIntermediate,
	ExperienceAdvanced,
	ExperienceProfessional,
	ExperienceInstructor,
}

// ExperienceLevels returns the levels in rank order.
func ExperienceLevels() []ExperienceLevel {
	return append([]ExperienceLevel(nil), experienceOrder...)
}

// AtLeast lists every level ranked at or above l.
func (l ExperienceLevel) AtLeast() []string {
	for i, level := range experienceOrder {
		if level == l {
			out := make([]string, 0, len(experienceOrder)-i)
			for _, higher := range experienceOrder[i:] {
				out = append(out, string(higher))
			}
			return out
		}
	}
	return nil
}

// ProficiencyLevel grades a dancer in one style.
type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "BEGINNER"
	ProficiencyIntermediate ProficiencyLevel = "INTERMEDIATE"
	ProficiencyAdvanced     ProficiencyLevel = "ADVANCED"
	ProficiencyExpert       ProficiencyLevel = "EXPERT"
)

// Dancer is a studio member.
type Dancer struct {
	ID                    string          `db:"id" json:"id"`
	FirstName             string          `db:"first_name" json:"first_name"`
	LastName              string          `db:"last_name" json:"last_name"`
	Email                 *string         `db:"email" json:"email,omitempty"`
	Phone                 *string         `db:"phone" json:"phone,omitempty"`
	DateOfBirth           *time.Time      `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                Gender          `db:"gender" json:"gender"`
	HeightCm              *float64        `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg              *float64        `db:"weight_kg" json:"weight_kg,omitempty"`
	ExperienceLevel       ExperienceLevel `db:"experience_level" json:"experience_level"`
	EmergencyContactName  *string         `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string         `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	MedicalNotes          *string         `db:"medical_notes" json:"medical_notes,omitempty"`
	Notes                 *string         `db:"notes" json:"notes,omitempty"`
	JoinedDate            time.Time       `db:"joined_date" json:"joined_date"`
	IsActive              bool            `db:"is_active" json:"is_active"`
	AuditFields
}

// FullName joins first and last name.
func (d *Dancer) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Age in whole years at now, nil when the birth date is unknown.
func (d *Dancer) Age(now time.Time) *int {
	if d.DateOfBirth == nil {
		return nil
	}
	dob := *d.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// DancerStyle records a dancer's proficiency in one style.
type DancerStyle struct {
	ID                string           `db:"id" json:"id"`
	DancerID          string           `db:"dancer_id" json:"dancer_id"`
	Style             DanceStyle       `db:"style" json:"style"`
	Proficiency       ProficiencyLevel `db:"proficiency" json:"proficiency"`
	YearsOfExperience int              `db:"years_of_experience" json:"years_of_experience"`
	Notes             *string          `db:"notes" json:"notes,omitempty"`
	AuditFields
}

// DancerFilter captures directory search criteria.
type DancerFilter struct {
	Search        string
	Gender        *Gender
	MinExperience *ExperienceLevel
	IsActive      *bool
	MinAge        *int
	MaxAge        *int
	Style         *DanceStyle
	Now           time.Time
	Page          int
	PageSize      int
}
