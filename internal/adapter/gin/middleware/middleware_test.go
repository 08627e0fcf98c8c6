package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(log *zap.Logger, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log), ErrorHandler(log))
	r.Use(extra...)
	r.NoRoute(NotFound)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantDetail bool
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError(apperrors.FieldError{Field: "email", Message: "Invalid email format"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidationFailed,
			wantMsg:    apperrors.MessageInvalidInput,
			wantDetail: true,
		},
		{
			name:       "business not found",
			err:        apperrors.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeUserNotFound,
			wantMsg:    "User not found",
		},
		{
			name:       "wrapped business error",
			err:        errors.Join(errors.New("context"), apperrors.ErrDuplicateEmail),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeDuplicateEmail,
			wantMsg:    "Email already exists",
		},
		{
			name:       "technical",
			err:        apperrors.NewTechnicalError("failed to list users", errors.New("dial tcp: refused")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantMsg:    apperrors.MessageInternal,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantMsg:    apperrors.MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			if tt.wantDetail {
				assert.NotEmpty(t, resp.Error.Details)
			} else {
				assert.Nil(t, resp.Error.Details)
			}
		})
	}
}

func TestErrorHandler_RendersHandlerError(t *testing.T) {
	r := newEngine(zaptest.NewLogger(t))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.NewValidationError(apperrors.FieldError{Field: "id", Message: "ID must be a positive integer"}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"Invalid input",
		"details":[{"field":"id","message":"ID must be a positive integer"}]}}`, w.Body.String())
}

func TestErrorHandler_TechnicalCauseNotLeaked(t *testing.T) {
	r := newEngine(zaptest.NewLogger(t))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.NewTechnicalError("failed to get user", errors.New("password=hunter2")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_SERVER_ERROR","message":"An unexpected error occurred"}}`, w.Body.String())
}

func TestNotFound(t *testing.T) {
	r := newEngine(zaptest.NewLogger(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"Route not found"}}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(zaptest.NewLogger(t))
	r.GET("/panic", func(c *gin.Context) {
		panic("something broke")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.CodeInternal, decode(t, w).Error.Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(zaptest.NewLogger(t))
	var seen string
	r.GET("/ok", func(c *gin.Context) {
		seen = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seen)
	})

	t.Run("echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func newLimitedEngine(t *testing.T, client *redis.Client, cfg RateLimiterConfig, now time.Time) *gin.Engine {
	log := zaptest.NewLogger(t)
	rl := NewRateLimiter(client, cfg, log)
	rl.now = func() time.Time { return now }

	r := newEngine(log, rl.Handler())
	r.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_TokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Unix(1_700_000_000, 0)
	r := newLimitedEngine(t, client, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 2}, now)

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.JSONEq(t, `{"error":{"code":"RATE_LIMIT_EXCEEDED","message":"Too many requests"}}`, w.Body.String())
}

func TestRateLimiter_Refills(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1}
	start := time.Unix(1_700_000_000, 0)

	r := newLimitedEngine(t, client, cfg, start)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, w.Code)

	later := newLimitedEngine(t, client, cfg, start.Add(2*time.Second))
	w = httptest.NewRecorder()
	later.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := newLimitedEngine(t, client, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1}, time.Now())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
