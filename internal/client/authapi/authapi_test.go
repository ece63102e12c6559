package authapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aitwy/aitwy-server/internal/client"
	"github.com/aitwy/aitwy-server/internal/models"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   string
}

func newBackend(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"no route matched"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func reply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_LoginAndMe(t *testing.T) {
	srv, calls := newBackend(t, map[string]func(w http.ResponseWriter){
		"POST /api/auth/login": reply(http.StatusOK, `{"success":true,"message":"Login successful","data":{"user":{"id":"65f0","name":"Jo","email":"jo@x.com","lastLogin":"2026-01-02T03:04:05Z"},"token":"jwt"}}`),
		"GET /api/auth/me":     reply(http.StatusOK, `{"success":true,"data":{"user":{"id":"65f0","name":"Jo","email":"jo@x.com","createdAt":"2026-01-01T00:00:00Z"}}}`),
	})

	c := New(srv.URL+"/api", time.Second, client.StaticToken("jwt"))
	ctx := context.Background()

	login, err := c.Login(ctx, models.LoginRequest{Email: "jo@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, "jwt", login.Data.Token)
	require.NotNil(t, login.Data.User.LastLogin)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", me.Data.User.Email)

	require.Len(t, *calls, 2)
	assert.Equal(t, "jo@x.com", gjson.Get((*calls)[0].body, "email").String())
	assert.Equal(t, "Bearer jwt", (*calls)[1].auth)
}

func TestClient_LoginUnverified(t *testing.T) {
	srv, _ := newBackend(t, map[string]func(w http.ResponseWriter){
		"POST /api/auth/login": reply(http.StatusUnauthorized, `{"success":false,"message":"Please verify your email address before logging in. Check your inbox for the verification link.","requiresVerification":true}`),
	})

	_, err := New(srv.URL+"/api", time.Second, nil).Login(context.Background(), models.LoginRequest{Email: "jo@x.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, RequiresVerification(err))

	apiErr, ok := client.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Please verify your email address")
}

func TestClient_VerifyEscapesToken(t *testing.T) {
	srv, calls := newBackend(t, map[string]func(w http.ResponseWriter){
		"GET /api/auth/verify-email/abc def": reply(http.StatusOK, `{"success":true,"message":"ok","data":{"user":{"id":"1","name":"Jo","email":"jo@x.com","isEmailVerified":true}}}`),
	})

	res, err := New(srv.URL+"/api", time.Second, nil).VerifyEmail(context.Background(), "abc def")
	require.NoError(t, err)
	require.NotNil(t, res.Data.User.IsEmailVerified)
	assert.True(t, *res.Data.User.IsEmailVerified)
	assert.Len(t, *calls, 1)
}

func TestClient_ResendAndHealth(t *testing.T) {
	srv, calls := newBackend(t, map[string]func(w http.ResponseWriter){
		"POST /api/auth/resend-verification": reply(http.StatusBadRequest, `{"success":false,"message":"This email address is already verified. You can log in to your account."}`),
		"GET /health":                        reply(http.StatusOK, `{"success":true,"message":"Server is running","data":{"status":"healthy","service":"aitwy-server"}}`),
	})
	c := New(srv.URL+"/api", time.Second, nil)

	_, err := c.ResendVerification(context.Background(), "jo@x.com")
	assert.EqualError(t, err, "This email address is already verified. You can log in to your account. (status 400)")
	assert.False(t, RequiresVerification(err))

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Data.Status)
	assert.Equal(t, "/health", (*calls)[1].path)
}
