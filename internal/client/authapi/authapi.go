// Package authapi calls the account backend under /api/auth.
package authapi

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aitwy/aitwy-server/internal/client"
	"github.com/aitwy/aitwy-server/internal/models"
)

// Result is the backend success envelope.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type HealthData struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type Client struct {
	rest *resty.Client
	// root serves /health, which lives outside the /api prefix.
	root *resty.Client
}

// New builds a client for baseURL, e.g. http://localhost:5001/api.
func New(baseURL string, timeout time.Duration, tokens client.TokenSource) *Client {
	return &Client{
		rest: client.NewRestClient(baseURL, timeout, tokens),
		root: client.NewRestClient(rootURL(baseURL), timeout, nil),
	}
}

func rootURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*Result[models.SignupResponse], error) {
	return post[models.SignupResponse](ctx, c.rest, "/auth/signup", req)
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*Result[models.LoginResponse], error) {
	return post[models.LoginResponse](ctx, c.rest, "/auth/login", req)
}

func (c *Client) Me(ctx context.Context) (*Result[models.UserResponse], error) {
	return get[models.UserResponse](c.rest.R().SetContext(ctx), "/auth/me")
}

func (c *Client) Logout(ctx context.Context) (*Result[struct{}], error) {
	return post[struct{}](ctx, c.rest, "/auth/logout", nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*Result[models.UserResponse], error) {
	req := c.rest.R().SetContext(ctx).SetPathParam("token", token)
	return get[models.UserResponse](req, "/auth/verify-email/{token}")
}

func (c *Client) ResendVerification(ctx context.Context, email string) (*Result[struct{}], error) {
	return post[struct{}](ctx, c.rest, "/auth/resend-verification", models.ResendVerificationRequest{Email: email})
}

func (c *Client) Health(ctx context.Context) (*Result[HealthData], error) {
	return get[HealthData](c.root.R().SetContext(ctx), "/health")
}

// RequiresVerification reports whether a failed login was rejected because
// the address is not verified yet.
func RequiresVerification(err error) bool {
	apiErr, ok := client.AsAPIError(err)
	return ok && apiErr.Field("requiresVerification").Bool()
}

func post[T any](ctx context.Context, rest *resty.Client, path string, body any) (*Result[T], error) {
	out := new(Result[T])
	req := rest.R().SetContext(ctx).SetResult(out)
	if body != nil {
		req.SetBody(body)
	}
	if err := client.CheckResponse(req.Post(path)); err != nil {
		return nil, err
	}
	return out, nil
}

func get[T any](req *resty.Request, path string) (*Result[T], error) {
	out := new(Result[T])
	if err := client.CheckResponse(req.SetResult(out).Get(path)); err != nil {
		return nil, err
	}
	return out, nil
}
