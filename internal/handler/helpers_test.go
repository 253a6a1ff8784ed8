package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

func newTestContext(method, target, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Params = params
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", FullName: "Lia Moss", Role: models.RoleInstructor})
	return c, w
}

func param(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
