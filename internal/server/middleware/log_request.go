package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// LogRequestConfig configures the access log. Bodies are never logged since
// auth payloads carry passwords. Path parameters are replaced by the route
// template unless ParamValues opts in.
type LogRequestConfig struct {
	Logger       Logger
	Skipper      Skipper
	RequestID    func(c echo.Context) string
	QueryParams  func(c echo.Context) bool
	ParamValues  func(c echo.Context) bool
	KeyAndValues func(c echo.Context) []interface{}
}

// LogRequest writes one access log line per request, at warn level for 4xx
// and error level for 5xx.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.QueryParams == nil {
		config.QueryParams = DefaultSkipper
	}
	if config.ParamValues == nil {
		config.ParamValues = DefaultSkipper
	}
	if config.RequestID == nil {
		config.RequestID = GetRequestID
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logParams := config.ParamValues(c)
			uri := req.RequestURI
			if !logParams && len(c.ParamNames()) > 0 {
				uri = c.Path()
			}
			args := make([]interface{}, 0, 20)
			args = append(args,
				"status", res.Status,
				"method", req.Method,
				"uri", uri,
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", config.RequestID(c),
			)
			if userID := GetUserID(c); userID != "" {
				args = append(args, "user_id", userID)
			}
			if config.QueryParams(c) {
				if query := c.QueryParams(); len(query) > 0 {
					args = append(args, "query", query)
				}
			}
			if logParams {
				if names := c.ParamNames(); len(names) > 0 {
					params := make(map[string]string, len(names))
					for _, name := range names {
						params[name] = c.Param(name)
					}
					args = append(args, "params", params)
				}
			}
			if config.KeyAndValues != nil {
				args = append(args, config.KeyAndValues(c)...)
			}

			switch {
			case res.Status >= 500:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Errorw("request failed", args...)
			case res.Status >= 400:
				config.Logger.Warnw("request rejected", args...)
			default:
				config.Logger.Infow("request served", args...)
			}
			return err
		}
	}
}
