package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type stubObserver struct {
	requests []recordedRequest
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	s.requests = append(s.requests, recordedRequest{method: method, path: path, status: status})
}

func newRouter(validator TokenValidator, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(validator)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).Principal())
	})
	r.DELETE("/courses/:id", handlers...)
	return r
}

func serve(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/courses/c-1", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	validator := stubValidator{"good": {UserID: "u1", FullName: "Lia Moss", Role: models.RoleUser}}
	r := newRouter(validator)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)

	w := serve(r, "bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lia Moss", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	validator := stubValidator{
		"admin":      {UserID: "a", Role: models.RoleAdmin},
		"instructor": {UserID: "i", Role: models.RoleInstructor},
		"user":       {UserID: "u", Role: models.RoleUser},
	}

	adminOnly := newRouter(validator, RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(adminOnly, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, serve(adminOnly, "Bearer instructor").Code)

	staff := newRouter(validator, Staff())
	assert.Equal(t, http.StatusOK, serve(staff, "Bearer instructor").Code)
	assert.Equal(t, http.StatusForbidden, serve(staff, "Bearer user").Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	for _, path := range []string{"/courses/c-1", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/courses/:id", status: http.StatusTeapot}, observer.requests[0])
	assert.Equal(t, "unmatched", observer.requests[1].path)
	assert.Equal(t, http.StatusNotFound, observer.requests[1].status)
}
