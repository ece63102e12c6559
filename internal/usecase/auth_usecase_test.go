package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/internal/models"
)

type authFixture struct {
	uc     *authUseCase
	users  *memUserRepo
	mailer *fakeMailer
	events *fakePublisher
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newMemUserRepo(),
		mailer: &fakeMailer{},
		events: &fakePublisher{},
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	conf := testConfig()
	tokens := NewTokenIssuer(conf)
	tokens.now = func() time.Time { return f.now }

	uc := NewAuthUseCase(f.users, f.mailer, f.events, tokens, conf).(*authUseCase)
	uc.now = func() time.Time { return f.now }
	f.uc = uc
	return f
}

func (f *authFixture) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	_, err := f.uc.Signup(context.Background(), models.SignupRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	mail, ok := f.mailer.last("verification")
	require.True(t, ok)
	return mail.token
}

func TestAuthUseCase_Signup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.uc.Signup(ctx, models.SignupRequest{Name: "  Jo ", Email: " Jo@X.com ", Password: "secret"})
	require.NoError(t, err)

	assert.True(t, resp.RequiresVerification)
	assert.Equal(t, "Jo", resp.User.Name)
	assert.Equal(t, "jo@x.com", resp.User.Email)
	require.NotNil(t, resp.User.IsEmailVerified)
	assert.False(t, *resp.User.IsEmailVerified)
	assert.NotEmpty(t, resp.User.ID)

	stored := f.users.get("jo@x.com")
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.IsEmailVerified)
	assert.NotEqual(t, "secret", stored.Password)
	require.NotNil(t, stored.EmailVerificationToken)
	require.NotNil(t, stored.EmailVerificationExpires)
	assert.Equal(t, f.now.Add(24*time.Hour), *stored.EmailVerificationExpires)

	mail, ok := f.mailer.last("verification")
	require.True(t, ok)
	assert.Equal(t, "jo@x.com", mail.to)
	assert.NotEqual(t, mail.token, *stored.EmailVerificationToken, "only the digest is stored")

	assert.Equal(t, []models.AccountEventName{models.EventUserRegistered}, f.events.names())
}

func TestAuthUseCase_Signup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Jo", "jo@x.com", "secret")

	_, err := f.uc.Signup(context.Background(), models.SignupRequest{Name: "Other", Email: "JO@x.com", Password: "secret2"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestAuthUseCase_Signup_EmailFailureSwallowed(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.verificationErr = models.ErrSendEmail

	resp, err := f.uc.Signup(context.Background(), models.SignupRequest{Name: "Jo", Email: "jo@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, resp.RequiresVerification)
	assert.NotNil(t, f.users.get("jo@x.com"))
}

func TestAuthUseCase_Signup_PublishFailureIgnored(t *testing.T) {
	f := newAuthFixture(t)
	f.events.err = errors.New("kafka down")

	_, err := f.uc.Signup(context.Background(), models.SignupRequest{Name: "Jo", Email: "jo@x.com", Password: "secret"})
	assert.NoError(t, err)
}

func TestAuthUseCase_Login(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *authFixture)
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "secret",
			wantErr:  models.ErrInvalidCredentials,
		},
		{
			name:     "unverified",
			email:    "jo@x.com",
			password: "secret",
			wantErr:  models.ErrEmailNotVerified,
		},
		{
			name:     "unverified is reported before password check",
			email:    "jo@x.com",
			password: "wrong",
			wantErr:  models.ErrEmailNotVerified,
		},
		{
			name: "deactivated",
			setup: func(f *authFixture) {
				u := f.users.get("jo@x.com")
				u.IsEmailVerified = true
				u.IsActive = false
			},
			email:    "jo@x.com",
			password: "secret",
			wantErr:  models.ErrAccountDisabled,
		},
		{
			name: "wrong password",
			setup: func(f *authFixture) {
				u := f.users.get("jo@x.com")
				u.IsEmailVerified = true
				u.IsActive = true
			},
			email:    "jo@x.com",
			password: "wrong",
			wantErr:  models.ErrInvalidCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.signup(t, "Jo", "jo@x.com", "secret")
			if tt.setup != nil {
				tt.setup(f)
			}

			resp, err := f.uc.Login(context.Background(), models.LoginRequest{Email: tt.email, Password: tt.password})
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthUseCase_SignupVerifyLoginMe(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.signup(t, "Jo", "jo@x.com", "secret")

	verified, err := f.uc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, verified.User.IsEmailVerified)
	assert.True(t, *verified.User.IsEmailVerified)

	welcome, ok := f.mailer.last("welcome")
	require.True(t, ok)
	assert.Equal(t, "jo@x.com", welcome.to)

	stored := f.users.get("jo@x.com")
	assert.True(t, stored.IsActive)
	assert.Nil(t, stored.EmailVerificationToken)
	assert.Nil(t, stored.EmailVerificationExpires)

	login, err := f.uc.Login(ctx, models.LoginRequest{Email: "JO@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	require.NotNil(t, login.User.LastLogin)
	assert.Equal(t, f.now, *login.User.LastLogin)

	user, err := f.uc.ValidateToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", user.Email)
	assert.Empty(t, user.Password)

	me, err := f.uc.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", me.User.Email)
	require.NotNil(t, me.User.LastLogin)

	assert.Equal(t, []models.AccountEventName{
		models.EventUserRegistered,
		models.EventUserVerified,
		models.EventUserLoggedIn,
	}, f.events.names())
}

func TestAuthUseCase_VerifyEmail_OneTimeUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.signup(t, "Jo", "jo@x.com", "secret")

	_, err := f.uc.VerifyEmail(ctx, token)
	require.NoError(t, err)

	_, err = f.uc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, models.ErrInvalidVerificationToken)
}

func TestAuthUseCase_VerifyEmail_Expired(t *testing.T) {
	f := newAuthFixture(t)
	token := f.signup(t, "Jo", "jo@x.com", "secret")

	f.now = f.now.Add(24*time.Hour + time.Second)
	_, err := f.uc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrInvalidVerificationToken)
	assert.False(t, f.users.get("jo@x.com").IsEmailVerified)
}

func TestAuthUseCase_VerifyEmail_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Jo", "jo@x.com", "secret")

	_, err := f.uc.VerifyEmail(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, models.ErrInvalidVerificationToken)
	_, err = f.uc.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidVerificationToken)
}

func TestAuthUseCase_VerifyEmail_WelcomeFailureSwallowed(t *testing.T) {
	f := newAuthFixture(t)
	token := f.signup(t, "Jo", "jo@x.com", "secret")
	f.mailer.welcomeErr = models.ErrSendEmail

	_, err := f.uc.VerifyEmail(context.Background(), token)
	assert.NoError(t, err)
}

func TestAuthUseCase_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		sent, err := f.uc.ResendVerification(ctx, models.ResendVerificationRequest{Email: "nobody@x.com"})
		assert.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("already verified", func(t *testing.T) {
		f := newAuthFixture(t)
		token := f.signup(t, "Jo", "jo@x.com", "secret")
		_, err := f.uc.VerifyEmail(ctx, token)
		require.NoError(t, err)

		sent, err := f.uc.ResendVerification(ctx, models.ResendVerificationRequest{Email: "jo@x.com"})
		assert.ErrorIs(t, err, models.ErrAlreadyVerified)
		assert.False(t, sent)
	})

	t.Run("regenerates token", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.signup(t, "Jo", "jo@x.com", "secret")

		sent, err := f.uc.ResendVerification(ctx, models.ResendVerificationRequest{Email: " JO@x.com"})
		require.NoError(t, err)
		assert.True(t, sent)

		mail, _ := f.mailer.last("verification")
		second := mail.token
		assert.NotEqual(t, first, second)

		_, err = f.uc.VerifyEmail(ctx, first)
		assert.ErrorIs(t, err, models.ErrInvalidVerificationToken)
		_, err = f.uc.VerifyEmail(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signup(t, "Jo", "jo@x.com", "secret")
		f.mailer.verificationErr = models.ErrSendEmail

		sent, err := f.uc.ResendVerification(ctx, models.ResendVerificationRequest{Email: "jo@x.com"})
		assert.ErrorIs(t, err, models.ErrSendEmail)
		assert.False(t, sent)
	})
}

func TestAuthUseCase_ValidateToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.uc.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	token, _, err := f.uc.tokens.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = f.uc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized, "unknown user")

	token, _, err = f.uc.tokens.Issue("not-an-object-id")
	require.NoError(t, err)
	_, err = f.uc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthUseCase_Logout(t *testing.T) {
	f := newAuthFixture(t)
	assert.NoError(t, f.uc.Logout(context.Background(), &models.User{ID: primitive.NewObjectID()}))
}
