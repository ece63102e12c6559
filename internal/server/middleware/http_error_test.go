package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serveError(t *testing.T, exposeErrors bool, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(ErrorHandlerConfig{
		Logger:       zap.NewNop().Sugar(),
		ExposeErrors: exposeErrors,
	})
	e.GET("/x", func(c echo.Context) error { return err })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorHandler(t *testing.T) {
	t.Run("response error", func(t *testing.T) {
		re := NewResponseError(http.StatusUnauthorized, "Invalid email or password", errors.New("bad password"))
		re.RequiresVerification = true
		code, body := serveError(t, true, fmt.Errorf("wrapped: %w", re))

		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid email or password", body["message"])
		assert.Equal(t, true, body["requiresVerification"])
		assert.NotContains(t, body, "error", "4xx never exposes internals")
	})

	t.Run("echo http error", func(t *testing.T) {
		code, body := serveError(t, false, echo.NewHTTPError(http.StatusBadRequest, "invalid body"))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid body", body["message"])
	})

	t.Run("internal error hidden", func(t *testing.T) {
		code, body := serveError(t, false, errors.New("mongo: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Internal server error", body["message"])
		assert.NotContains(t, body, "error")
	})

	t.Run("internal error exposed", func(t *testing.T) {
		re := NewResponseError(http.StatusInternalServerError, "Error logging in", errors.New("mongo: connection refused"))
		code, body := serveError(t, true, re)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Error logging in", body["message"])
		assert.Equal(t, "mongo: connection refused", body["error"])
	})
}

func TestErrorHandler_NotFound(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(ErrorHandlerConfig{Logger: zap.NewNop().Sugar()})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"no route matched"}`, rec.Body.String())
}

func TestErrorHandler_Canceled(t *testing.T) {
	e := echo.New()
	handler := ErrorHandler(ErrorHandlerConfig{Logger: zap.NewNop().Sugar()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(fmt.Errorf("query: %w", context.Canceled), c)
	assert.Equal(t, 499, rec.Code)
}
