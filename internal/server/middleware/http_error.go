package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aitwy/aitwy-server/pkg/logger"
)

const internalErrorMessage = "Internal server error"

type ErrorHandlerConfig struct {
	Logger Logger
	// ExposeErrors copies the underlying error text into the "error" field of
	// 5xx responses.
	ExposeErrors bool
}

// ErrorHandler return custom http error handler.
func ErrorHandler(config ErrorHandlerConfig) echo.HTTPErrorHandler {
	if config.Logger == nil {
		panic("Logger is required to use ErrorHandler")
	}

	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := &ResponseError{
			Status:  http.StatusInternalServerError,
			Message: internalErrorMessage,
			Err:     err,
		}

		var (
			re *ResponseError
			he *echo.HTTPError
		)
		switch {
		case errors.As(err, &re):
			copied := *re
			resp = &copied
		case errors.As(err, &he):
			resp.Status = he.Code
			resp.Message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				resp.Err = he.Internal
			}
		default:
			// detect canceled request error
			if errors.Is(err, context.Canceled) && c.Request().Context().Err() == context.Canceled {
				resp.Status = 499
				resp.Message = "request canceled"
			}
		}
		resp.Success = false

		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.Message = "no route matched"
		}

		if resp.Status >= http.StatusInternalServerError {
			logger.Errorw(c.Request().Context(), "request failed",
				"status", resp.Status,
				"error", resp.Err,
			)
			resp.Detail = ""
			if config.ExposeErrors && resp.Err != nil {
				resp.Detail = resp.Err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			config.Logger.Errorw("could not response", "code", resp.Status, "response_body", resp)
		}
	}
}
