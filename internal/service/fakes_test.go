package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/repository"
)

// studioState backs the in-memory repositories used by service tests. The
// enrollment store honours the same counter rules as the SQL repository.
type studioState struct {
	courses     map[string]*models.Course
	sessions    map[string]*models.CourseSession
	enrollments map[string]*models.CourseEnrollment
	attendances map[string]*models.SessionAttendance
	seq         int
}

func newStudioState() *studioState {
	return &studioState{
		courses:     map[string]*models.Course{},
		sessions:    map[string]*models.CourseSession{},
		enrollments: map[string]*models.CourseEnrollment{},
		attendances: map[string]*models.SessionAttendance{},
	}
}

func (s *studioState) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *studioState) addCourse(id string, capacity int, start, end time.Time) *models.Course {
	course := &models.Course{
		ID:        id,
		Name:      "Course " + id,
		Capacity:  capacity,
		StartDate: start,
		EndDate:   end,
		Currency:  models.DefaultCurrency,
		IsActive:  true,
	}
	s.courses[id] = course
	return course
}

func (s *studioState) addSession(id, courseID string, start, end time.Time) *models.CourseSession {
	session := &models.CourseSession{ID: id, CourseID: courseID, StartTime: start, EndTime: end}
	s.sessions[id] = session
	return session
}

type memCourses struct{ state *studioState }

func (m memCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := m.state.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (m memCourses) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.state.courses[id]
	return ok, nil
}

type memSessions struct{ state *studioState }

func (m memSessions) FindByID(ctx context.Context, id string) (*models.CourseSession, error) {
	session, ok := m.state.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

type memEnrollments struct{ state *studioState }

func (m memEnrollments) acquire(courseID string) error {
	course := m.state.courses[courseID]
	if course.EnrollmentCount >= course.Capacity {
		return repository.ErrCapacityReached
	}
	course.EnrollmentCount++
	return nil
}

func (m memEnrollments) release(courseID string) {
	if course := m.state.courses[courseID]; course.EnrollmentCount > 0 {
		course.EnrollmentCount--
	}
}

func (m memEnrollments) Create(ctx context.Context, e *models.CourseEnrollment, takeSlot bool) error {
	for _, existing := range m.state.enrollments {
		if existing.CourseID == e.CourseID && existing.DancerID == e.DancerID {
			return fmt.Errorf("insert enrollment: %w", repository.ErrDuplicate)
		}
	}
	if takeSlot {
		if err := m.acquire(e.CourseID); err != nil {
			return err
		}
	}
	if e.ID == "" {
		e.ID = m.state.nextID("enr")
	}
	copied := *e
	m.state.enrollments[e.ID] = &copied
	return nil
}

func (m memEnrollments) Update(ctx context.Context, id string, apply func(*models.CourseEnrollment) (models.SlotDelta, error)) (*models.CourseEnrollment, error) {
	current, ok := m.state.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	working := *current
	delta, err := apply(&working)
	if err != nil {
		return nil, err
	}
	switch delta {
	case models.SlotAcquire:
		if err := m.acquire(working.CourseID); err != nil {
			return nil, err
		}
	case models.SlotRelease:
		m.release(working.CourseID)
	}
	*current = working
	return &working, nil
}

func (m memEnrollments) Delete(ctx context.Context, id string, holdsSlot func(models.EnrollmentStatus) bool) error {
	current, ok := m.state.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(m.state.enrollments, id)
	if holdsSlot == nil || holdsSlot(current.Status) {
		m.release(current.CourseID)
	}
	return nil
}

func (m memEnrollments) detail(e *models.CourseEnrollment) models.EnrollmentDetail {
	d := models.EnrollmentDetail{CourseEnrollment: *e}
	if course, ok := m.state.courses[e.CourseID]; ok {
		d.CourseName = course.Name
		d.CourseStartDate = course.StartDate
	}
	return d
}

func (m memEnrollments) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	current, ok := m.state.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := m.detail(current)
	return &d, nil
}

func (m memEnrollments) FindByCourseAndDancer(ctx context.Context, courseID, dancerID string) (*models.CourseEnrollment, error) {
	for _, e := range m.state.enrollments {
		if e.CourseID == courseID && e.DancerID == dancerID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memEnrollments) IsEnrolled(ctx context.Context, courseID, dancerID string) (bool, error) {
	_, err := m.FindByCourseAndDancer(ctx, courseID, dancerID)
	return err == nil, nil
}

func (m memEnrollments) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.state.enrollments {
		if e.CourseID == courseID {
			out = append(out, m.detail(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DancerName < out[j].DancerName })
	return out, nil
}

func (m memEnrollments) ListByDancer(ctx context.Context, dancerID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.state.enrollments {
		if e.DancerID == dancerID {
			out = append(out, m.detail(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseStartDate.After(out[j].CourseStartDate) })
	return out, nil
}

func (m memEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.state.enrollments {
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.DancerName), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, m.detail(e))
	}
	return out, len(out), nil
}

type memAttendances struct{ state *studioState }

func attendanceKey(sessionID, dancerID string) string {
	return sessionID + "/" + dancerID
}

func (m memAttendances) Upsert(ctx context.Context, a *models.SessionAttendance) (bool, error) {
	key := attendanceKey(a.SessionID, a.DancerID)
	if existing, ok := m.state.attendances[key]; ok {
		existing.Status = a.Status
		existing.RecordedAt = a.RecordedAt
		if a.Notes != nil {
			existing.Notes = a.Notes
		}
		existing.LastModifiedAt = a.LastModifiedAt
		existing.LastModifiedBy = a.LastModifiedBy
		*a = *existing
		return false, nil
	}
	if a.ID == "" {
		a.ID = m.state.nextID("att")
	}
	stored := *a
	stored.LastModifiedAt = nil
	stored.LastModifiedBy = nil
	m.state.attendances[key] = &stored
	*a = stored
	return true, nil
}

func (m memAttendances) FindBySessionAndDancer(ctx context.Context, sessionID, dancerID string) (*models.SessionAttendance, error) {
	a, ok := m.state.attendances[attendanceKey(sessionID, dancerID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (m memAttendances) ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendance, error) {
	var out []models.SessionAttendance
	for _, a := range m.state.attendances {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DancerName < out[j].DancerName })
	return out, nil
}

func (m memAttendances) DeleteBySessionAndDancer(ctx context.Context, sessionID, dancerID string) error {
	key := attendanceKey(sessionID, dancerID)
	if _, ok := m.state.attendances[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.state.attendances, key)
	return nil
}

func strPtr(value string) *string {
	return &value
}
