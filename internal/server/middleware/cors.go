package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// OriginPattern builds a matcher from exact origins. An entry may use `*` as
// a wildcard, e.g. `https://*.aitwy.com`.
func OriginPattern(origins ...string) *regexp.Regexp {
	parts := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		quoted := regexp.QuoteMeta(origin)
		parts = append(parts, strings.ReplaceAll(quoted, `\*`, `[^/]*`))
	}
	if len(parts) == 0 {
		// matches nothing
		return regexp.MustCompile(`a^`)
	}
	return regexp.MustCompile(`^(` + strings.Join(parts, "|") + `)$`)
}

// CORS return echo middleware that handle cors with regexp pattern
func CORS(pattern *regexp.Regexp) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			respHeader := c.Response().Header()
			respHeader.Add("Vary", "Origin")
			origin := c.Request().Header.Get("Origin")
			if origin == "" || !pattern.MatchString(origin) {
				return next(c)
			}
			respHeader.Set("Access-Control-Allow-Origin", origin)
			respHeader.Set("Access-Control-Allow-Credentials", "true")
			if c.Request().Method == http.MethodOptions {
				respHeader.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, ngrok-skip-browser-warning")
				respHeader.Set("Access-Control-Allow-Methods", "OPTIONS, POST, PUT, DELETE, GET, PATCH, HEAD")
				respHeader.Set("Access-Control-Max-Age", "600")
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
