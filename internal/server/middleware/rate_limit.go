package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aitwy/aitwy-server/internal/repo/ratelimit"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

const tooManyRequestsMessage = "Too many requests, please try again later."

// RateLimit limits requests per client IP under the given scope. When the
// limiter backend fails the request is let through and the failure logged.
func RateLimit(limiter ratelimit.Limiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			allowed, err := limiter.Allow(ctx, scope+":"+c.RealIP())
			if err != nil {
				logger.Warnw(ctx, "rate limiter unavailable", "scope", scope, "error", err)
				return next(c)
			}
			if !allowed {
				return NewResponseError(http.StatusTooManyRequests, tooManyRequestsMessage, nil)
			}
			return next(c)
		}
	}
}
