package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aitwy/aitwy-server/pkg/logger"
)

const XRequestID = "x-request-id"

// GetRequestID returns the id RequestID assigned to the request.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(XRequestID).(string)
	return id
}

// incomingRequestID keeps a client supplied id only when it is a canonical
// UUID, so arbitrary header text never reaches the logs.
func incomingRequestID(c echo.Context) (string, bool) {
	raw := c.Request().Header.Get(XRequestID)
	if len(raw) != 36 {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// RequestID reuses or generates the request id, echoes it in the response
// header and starts the request's log fields with it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID, ok := incomingRequestID(c)
			if !ok {
				reqID = uuid.NewString()
			}
			ctx := logger.WithFields(c.Request().Context(), "request_id", reqID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(XRequestID, reqID)
			c.Response().Header().Set(XRequestID, reqID)
			return next(c)
		}
	}
}
