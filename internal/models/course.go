package models

import "time"

// DanceStyle enumerates the styles taught at the studio.
type DanceStyle string

const (
	DanceStyleBallet       DanceStyle = "BALLET"
	DanceStyleContemporary DanceStyle = "CONTEMPORARY"
	DanceStyleJazz         DanceStyle = "JAZZ"
	DanceStyleHipHop       DanceStyle = "HIP_HOP"
	DanceStyleTap          DanceStyle = "TAP"
	DanceStyleBallroom     DanceStyle = "BALLROOM"
	DanceStyleLatin        DanceStyle = "LATIN"
	DanceStyleSalsa        DanceStyle = "SALSA"
	DanceStyleBreakdance   DanceStyle = "BREAKDANCE"
	DanceStyleFolk         DanceStyle = "FOLK"
	DanceStyleModern       DanceStyle = "MODERN"
	DanceStyleSwing        DanceStyle = "SWING"
	DanceStyleLyrical      DanceStyle = "LYRICAL"
	DanceStyleOther        DanceStyle = "OTHER"
)

// DanceStyles lists every known style.
func DanceStyles() []DanceStyle {
	return []DanceStyle{
		DanceStyleBallet, DanceStyleContemporary, DanceStyleJazz, DanceStyleHipHop, DanceStyleTap,
		DanceStyleBallroom, DanceStyleLatin, DanceStyleSalsa, DanceStyleBreakdance, DanceStyleFolk,
		DanceStyleModern, DanceStyleSwing, DanceStyleLyrical, DanceStyleOther,
	}
}

// DifficultyLevel describes who a course targets.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "BEGINNER"
	DifficultyIntermediate DifficultyLevel = "INTERMEDIATE"
	DifficultyAdvanced     DifficultyLevel = "ADVANCED"
	DifficultyAllLevels    DifficultyLevel = "ALL_LEVELS"
)

func DifficultyLevels() []DifficultyLevel {
	return []DifficultyLevel{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyAllLevels}
}

// DefaultCurrency is applied when a course is created without one.
const DefaultCurrency = "USD"

// Course is a scheduled offering with a capacity and a date range.
type Course struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Description     *string         `db:"description" json:"description,omitempty"`
	DanceStyle      DanceStyle      `db:"dance_style" json:"dance_style"`
	DifficultyLevel DifficultyLevel `db:"difficulty_level" json:"difficulty_level"`
	StartDate       time.Time       `db:"start_date" json:"start_date"`
	EndDate         time.Time       `db:"end_date" json:"end_date"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Capacity        int             `db:"capacity" json:"capacity"`
	EnrollmentCount int             `db:"enrollment_count" json:"enrollment_count"`
	Location        *string         `db:"location" json:"location,omitempty"`
	InstructorID    *string         `db:"instructor_id" json:"instructor_id,omitempty"`
	InstructorName  *string         `db:"instructor_name" json:"instructor_name,omitempty"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	Price           float64         `db:"price" json:"price"`
	Currency        string          `db:"currency" json:"currency"`
	AuditFields
}

// IsFull reports whether every slot is taken.
func (c *Course) IsFull() bool {
	return c.EnrollmentCount >= c.Capacity
}

// AvailableSpots never goes below zero.
func (c *Course) AvailableSpots() int {
	if c.EnrollmentCount >= c.Capacity {
		return 0
	}
	return c.Capacity - c.EnrollmentCount
}

func (c *Course) HasStarted(now time.Time) bool {
	return !now.Before(c.StartDate)
}

func (c *Course) HasEnded(now time.Time) bool {
	return now.After(c.EndDate)
}

// Contains reports whether [start, end] lies within the course dates.
func (c *Course) Contains(start, end time.Time) bool {
	return !start.Before(c.StartDate) && !end.After(c.EndDate)
}

// CourseFilter captures catalog search criteria.
type CourseFilter struct {
	Search            string
	DanceStyle        *DanceStyle
	DifficultyLevel   *DifficultyLevel
	IsActive          *bool
	StartFrom         *time.Time
	StartTo           *time.Time
	InstructorID      string
	HasAvailableSpots *bool
	FutureOnly        bool
	Now               time.Time
	Page              int
	PageSize          int
}
