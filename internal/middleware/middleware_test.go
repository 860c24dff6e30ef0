package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

const testSecret = "test-secret"

type fakeUsers struct {
	known map[string]bool
	err   error
}

func (f fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], f.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware())
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	r.GET("/test", handlers...)
	return r
}

func doGet(t *testing.T, r http.Handler, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTRequired(t *testing.T) {
	m := NewJWTMiddleware(testSecret, fakeUsers{known: map[string]bool{"u1": true}})
	r := newRouter(m.Required())

	w := doGet(t, r, token(t, "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	tests := map[string]struct {
		auth string
		code string
	}{
		"missing header": {"", "UNAUTHORIZED"},
		"wrong scheme":   {"Basic abc", "UNAUTHORIZED"},
		"bad token":      {"Bearer nope", "INVALID_TOKEN"},
		"deleted user":   {token(t, "ghost"), "USER_NOT_FOUND"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := doGet(t, r, tt.auth)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTRequired_LookupFailure(t *testing.T) {
	m := NewJWTMiddleware(testSecret, fakeUsers{err: errors.New("db down")})
	w := doGet(t, newRouter(m.Required()), token(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJWTOptional(t *testing.T) {
	m := NewJWTMiddleware(testSecret, fakeUsers{known: map[string]bool{"u1": true}})
	r := newRouter(m.Optional())

	w := doGet(t, r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = doGet(t, r, token(t, "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = doGet(t, r, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(t, r, token(t, "ghost"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadRateLimiter(t *testing.T) {
	rl := NewUploadRateLimiter(2)
	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"), "limits are per user")

	rl.sweep(time.Now().Add(time.Hour))
	assert.Empty(t, rl.limiters)
	assert.True(t, rl.Allow("u1"), "a swept user starts with a full burst")
}

func TestUploadRateLimiter_Disabled(t *testing.T) {
	rl := NewUploadRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("u1"))
	}
}

func TestUploadRateLimiter_Handle(t *testing.T) {
	rl := NewUploadRateLimiter(1)
	r := newRouter(rl.Handle())

	assert.Equal(t, http.StatusOK, doGet(t, r, "").Code)
	w := doGet(t, r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, w))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
