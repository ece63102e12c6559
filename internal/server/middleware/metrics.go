package middleware

import (
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aitwy/aitwy-server/pkg/util"
)

type MetricsConfig struct {
	Skipper Skipper
	// NormalizeHTTPStatus folds status codes into 2xx, 4xx and so on.
	NormalizeHTTPStatus bool
	// NotFoundPath labels requests that matched no route.
	NotFoundPath string
}

const httpRequestsDuration = "request_duration_seconds"

// health probes and scrapes would dominate the histogram
func skipProbes(c echo.Context) bool {
	path := c.Path()
	return path == "/health" || path == "/metrics"
}

var DefaultMetricsConfig = MetricsConfig{
	Skipper:      skipProbes,
	NotFoundPath: "/not-found",
}

func normalizeHTTPStatus(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics records request latency by status, method and route.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.NotFoundPath == "" {
		config.NotFoundPath = DefaultMetricsConfig.NotFoundPath
	}
	durations, err := util.GetHistogramVec(httpRequestsDuration, "Time spent serving a route", "code", "method", "path")
	if err != nil {
		panic(err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			// unmatched paths share one label to keep cardinality bounded
			path := c.Path()
			if path == "" || isNotFoundHandler(c.Handler()) {
				path = config.NotFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			if config.NormalizeHTTPStatus {
				status = normalizeHTTPStatus(c.Response().Status)
			}
			durations.WithLabelValues(status, c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
