// Package client holds what the dashboard API clients share: the resty setup
// and the normalized APIError.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/aitwy/aitwy-server/pkg/util"
)

const defaultErrorMessage = "An error occurred"

// TokenSource supplies the bearer token for outgoing requests. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// APIError is the normalized form of every failed call. Status is zero when
// no response was received. Details holds the raw response body and Err the
// transport error, if any.
type APIError struct {
	Message string
	Status  int
	Details []byte
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Field reads a gjson path from the error body.
func (e *APIError) Field(path string) gjson.Result {
	return gjson.GetBytes(e.Details, path)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// NewRestClient returns a resty client rooted at baseURL. It attaches the
// bearer token from tokens on every request and never retries.
func NewRestClient(baseURL string, timeout time.Duration, tokens TokenSource) *resty.Client {
	c := util.NewRestyClient(timeout).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if tokens != nil {
		c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if token := tokens.Token(); token != "" {
				req.SetAuthToken(token)
			}
			return nil
		})
	}
	return c
}

// CheckResponse converts a transport error or a non-2xx response into an
// *APIError.
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		status := 0
		var body []byte
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
			body = resp.Body()
		}
		return &APIError{Message: messageOr(body, err.Error()), Status: status, Details: body, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	body := resp.Body()
	return &APIError{
		Message: messageOr(body, statusMessage(resp.StatusCode())),
		Status:  resp.StatusCode(),
		Details: body,
	}
}

// messageOr extracts a human message from an error body: `message` first,
// then `detail` as a string or as a validation list.
func messageOr(body []byte, fallback string) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
		detail := gjson.GetBytes(body, "detail")
		switch {
		case detail.Type == gjson.String && detail.Str != "":
			return detail.Str
		case detail.IsArray():
			if msg := detail.Get("0.msg"); msg.Str != "" {
				return msg.Str
			}
		}
	}
	if fallback == "" {
		return defaultErrorMessage
	}
	return fallback
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return defaultErrorMessage
}
