package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("enroll: %w", Clone(ErrCourseFull, "Salsa Basics is full"))

	assert.True(t, Is(err, ErrCourseFull))
	assert.False(t, Is(err, ErrAlreadyEnrolled))
	assert.False(t, Is(errors.New("plain"), ErrCourseFull))
	assert.False(t, Is(err, nil))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	assert.Nil(t, FromError(nil))

	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	notEnrolled := FromError(ErrNotEnrolled)
	assert.Equal(t, http.StatusPreconditionFailed, notEnrolled.Status)
}

func TestCloneKeepsOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "course not found")
	assert.Equal(t, "course not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, ErrNotFound.Message, Clone(ErrNotFound, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}
