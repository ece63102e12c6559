package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

var (
	DefaultSkipper = func(c echo.Context) bool {
		return false
	}
)

type Skipper func(c echo.Context) bool

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Debugw(template string, args ...interface{})
	Infow(template string, args ...interface{})
	Warnw(template string, args ...interface{})
	Errorw(template string, args ...interface{})
}

// Response is the success envelope shared by every JSON endpoint.
type Response struct {
	Status  int         `json:"-"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewResponse(status int, message string, data interface{}) *Response {
	return &Response{
		Status:  status,
		Success: true,
		Message: message,
		Data:    data,
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ResponseError is the failure envelope. Err is never serialized; its text is
// only exposed through Detail when the handler is configured to do so.
type ResponseError struct {
	Status               int          `json:"-"`
	Err                  error        `json:"-"`
	Success              bool         `json:"success"`
	Message              string       `json:"message,omitempty"`
	Detail               string       `json:"error,omitempty"`
	Errors               []FieldError `json:"errors,omitempty"`
	RequiresVerification bool         `json:"requiresVerification,omitempty"`
}

func NewResponseError(status int, message string, err error) *ResponseError {
	return &ResponseError{
		Status:  status,
		Err:     err,
		Message: message,
	}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d, message: %s; error: %+v", e.Status, e.Message, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
