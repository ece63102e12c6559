package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aitwy/aitwy-server/pkg/util"
)

func makeRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func resetDurations(t *testing.T) {
	t.Helper()
	durations, err := util.GetHistogramVec(httpRequestsDuration, "Time spent serving a route", "code", "method", "path")
	require.NoError(t, err)
	durations.Reset()
}

func TestMetricsMiddleware(t *testing.T) {
	resetDurations(t)
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(ErrorHandlerConfig{Logger: zap.NewNop().Sugar()})
	e.Use(Metrics())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api/auth/verify-email/:token", func(c echo.Context) error {
		return NewResponseError(http.StatusBadRequest, "bad token", nil)
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("internal user error")
	})

	for i := 0; i < 10; i++ {
		makeRequest(e, http.MethodPost, "/api/auth/login")
		makeRequest(e, http.MethodGet, "/health")
	}
	for i := 0; i < 3; i++ {
		makeRequest(e, http.MethodGet, "/api/auth/verify-email/tok"+string(rune('a'+i)))
		makeRequest(e, http.MethodGet, "/boom")
	}
	for i := 0; i < 7; i++ {
		makeRequest(e, http.MethodGet, "/nope")
	}

	body := makeRequest(e, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, `request_duration_seconds_count{code="200",method="POST",path="/api/auth/login"} 10`)
	assert.Contains(t, body, `request_duration_seconds_count{code="400",method="GET",path="/api/auth/verify-email/:token"} 3`)
	assert.Contains(t, body, `request_duration_seconds_count{code="500",method="GET",path="/boom"} 3`)
	assert.Contains(t, body, `request_duration_seconds_count{code="404",method="GET",path="/not-found"} 7`)
	assert.NotContains(t, body, `path="/health"`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestNormalizeHTTPStatus(t *testing.T) {
	assert.Equal(t, "1xx", normalizeHTTPStatus(101))
	assert.Equal(t, "2xx", normalizeHTTPStatus(201))
	assert.Equal(t, "3xx", normalizeHTTPStatus(302))
	assert.Equal(t, "4xx", normalizeHTTPStatus(429))
	assert.Equal(t, "5xx", normalizeHTTPStatus(503))
}
