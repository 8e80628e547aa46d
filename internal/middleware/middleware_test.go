package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStructuredLoggingMiddleware_PropagatesLoggerAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) {
		fromCtx := middleware.GetLoggerFromCtx(c.Request.Context())
		require.NotNil(t, fromCtx)
		fromCtx.Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), "inside handler")
	assert.Contains(t, buf.String(), "Request completed")
}

func TestGetLoggerFromCtx_MissingReturnsNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, middleware.GetLoggerFromCtx(req.Context()))
}

func TestOwnerContext(t *testing.T) {
	r := gin.New()
	r.Use(middleware.OwnerContext())
	handler := func(c *gin.Context) {
		ownerID, ok := middleware.GetOwnerIDFromContext(c)
		if !ok {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, ownerID)
	}
	r.GET("/owners/:ownerId/things", handler)
	r.GET("/things", handler)

	for path, want := range map[string]string{
		"/owners/o-1/things":  "o-1",
		"/things?ownerId=o-2": "o-2",
		"/things":             "none",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Body.String(), path)
	}
}

func TestRateLimit_BlocksAfterLimitPerOwner(t *testing.T) {
	lim, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.OwnerContext(), middleware.RateLimit(lim))
	r.GET("/projection", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projection?ownerId=a", nil))
		codes = append(codes, w.Code)
	}
	// A different owner has its own budget.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projection?ownerId=b", nil))
	codes = append(codes, w.Code)

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusOK}, codes)
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "api_v1_projection", middleware.EventName("/api/v1/projection"))
	assert.Equal(t, "api_v1_owners_by_ownerId_recurrences", middleware.EventName("/api/v1/owners/:ownerId/recurrences"))
	assert.Equal(t, "", middleware.EventName(""))
}
