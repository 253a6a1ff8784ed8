package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseSession, error)
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func loadCourse(ctx context.Context, courses courseReader, id string) (*models.Course, error) {
	course, err := courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func loadSession(ctx context.Context, sessions sessionReader, id string) (*models.CourseSession, error) {
	session, err := sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// outcomeLabel turns an operation result into a metrics label.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}
