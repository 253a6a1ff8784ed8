package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// actor is the audit principal for the request.
func actor(c *gin.Context) string {
	return claimsFromContext(c).Principal()
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

func invalidQuery(name string) error {
	return appErrors.Clone(appErrors.ErrValidation, "invalid query parameter "+name)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func boolQuery(c *gin.Context, name string) *bool {
	switch strings.ToLower(c.Query(name)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func intQuery(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidQuery(name)
	}
	return &v, nil
}

// timeQuery accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalidQuery(name)
}

// enumQuery upper-cases the value and checks it against allowed.
func enumQuery[T ~string](c *gin.Context, name string, allowed ...T) (*T, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query(name)))
	if raw == "" {
		return nil, nil
	}
	for _, a := range allowed {
		if string(a) == raw {
			v := a
			return &v, nil
		}
	}
	return nil, invalidQuery(name)
}
