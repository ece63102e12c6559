package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/models"
	"github.com/aitwy/aitwy-server/internal/repo/events"
	"github.com/aitwy/aitwy-server/internal/repo/mailer"
	"github.com/aitwy/aitwy-server/internal/repo/mongodb"
	"github.com/aitwy/aitwy-server/pkg/logger"
	"github.com/aitwy/aitwy-server/pkg/secret"
	"github.com/aitwy/aitwy-server/pkg/util"
)

type AuthUseCase interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.UserResponse, error)
	Logout(ctx context.Context, user *models.User) error
	VerifyEmail(ctx context.Context, token string) (*models.UserResponse, error)
	// ResendVerification reports whether an email was sent. Unknown addresses
	// return false without error.
	ResendVerification(ctx context.Context, req models.ResendVerificationRequest) (bool, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

var authEvents = util.MustCounterVec("auth_events_total", "Authentication outcomes", "event", "outcome")

type authUseCase struct {
	users           mongodb.UserRepository
	mailer          mailer.Mailer
	events          events.Publisher
	tokens          *TokenIssuer
	verificationTTL time.Duration
	bcryptCost      int
	now             func() time.Time
}

func NewAuthUseCase(
	users mongodb.UserRepository,
	m mailer.Mailer,
	publisher events.Publisher,
	tokens *TokenIssuer,
	conf *config.Config,
) AuthUseCase {
	return &authUseCase{
		users:           users,
		mailer:          m,
		events:          publisher,
		tokens:          tokens,
		verificationTTL: conf.Auth.VerificationTTL,
		bcryptCost:      conf.Auth.BcryptCost,
		now:             time.Now,
	}
}

func (uc *authUseCase) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	req.Normalize()

	_, err := uc.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		authEvents.WithLabelValues("signup", "duplicate").Inc()
		return nil, models.ErrEmailTaken
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := user.SetPassword(req.Password, uc.bcryptCost); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	token, err := user.GenerateVerificationToken(uc.now(), uc.verificationTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			authEvents.WithLabelValues("signup", "duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.AddFields(ctx, "user_id", user.ID.Hex())

	// the account exists either way; the user can ask for a resend
	if err := uc.mailer.SendVerificationEmail(ctx, user, token); err != nil {
		logger.Warnw(ctx, "verification email not sent on signup", "error", err)
	}

	uc.publish(ctx, models.EventUserRegistered, user)
	authEvents.WithLabelValues("signup", "ok").Inc()

	return &models.SignupResponse{
		User:                 models.SignupView(user),
		RequiresVerification: true,
	}, nil
}

func (uc *authUseCase) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Normalize()

	user, err := uc.users.GetByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			authEvents.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := user.LoginBlock(); err != nil {
		outcome := "disabled"
		if errors.Is(err, models.ErrEmailNotVerified) {
			outcome = "unverified"
		}
		authEvents.WithLabelValues("login", outcome).Inc()
		return nil, err
	}
	if !user.ComparePassword(req.Password) {
		authEvents.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, models.ErrInvalidCredentials
	}

	token, _, err := uc.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	now := uc.now()
	if err := uc.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now
	logger.AddFields(ctx, "user_id", user.ID.Hex())

	uc.publish(ctx, models.EventUserLoggedIn, user)
	authEvents.WithLabelValues("login", "ok").Inc()

	return &models.LoginResponse{
		User:  models.LoginView(user),
		Token: token,
	}, nil
}

func (uc *authUseCase) GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.UserResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.UserResponse{User: models.ProfileView(user)}, nil
}

// Logout only records the event. Tokens stay valid until they expire and the
// client is expected to discard its copy.
func (uc *authUseCase) Logout(ctx context.Context, user *models.User) error {
	logger.Infow(ctx, "user logged out", "user_id", user.ID.Hex())
	authEvents.WithLabelValues("logout", "ok").Inc()
	return nil
}

func (uc *authUseCase) VerifyEmail(ctx context.Context, token string) (*models.UserResponse, error) {
	if token == "" {
		authEvents.WithLabelValues("verify", "invalid_token").Inc()
		return nil, models.ErrInvalidVerificationToken
	}

	user, err := uc.users.VerifyByTokenHash(ctx, secret.HashToken(token), uc.now())
	if err != nil {
		if errors.Is(err, models.ErrInvalidVerificationToken) {
			authEvents.WithLabelValues("verify", "invalid_token").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}
	logger.AddFields(ctx, "user_id", user.ID.Hex())

	if err := uc.mailer.SendWelcomeEmail(ctx, user); err != nil {
		logger.Warnw(ctx, "welcome email not sent", "error", err)
	}

	uc.publish(ctx, models.EventUserVerified, user)
	authEvents.WithLabelValues("verify", "ok").Inc()

	return &models.UserResponse{User: models.VerifiedView(user)}, nil
}

func (uc *authUseCase) ResendVerification(ctx context.Context, req models.ResendVerificationRequest) (bool, error) {
	req.Normalize()

	user, err := uc.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			authEvents.WithLabelValues("resend", "unknown_email").Inc()
			return false, nil
		}
		return false, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user.IsEmailVerified {
		authEvents.WithLabelValues("resend", "already_verified").Inc()
		return false, models.ErrAlreadyVerified
	}

	token, err := user.GenerateVerificationToken(uc.now(), uc.verificationTTL)
	if err != nil {
		return false, fmt.Errorf("failed to generate verification token: %w", err)
	}
	err = uc.users.SetVerificationToken(ctx, user.ID, *user.EmailVerificationToken, *user.EmailVerificationExpires)
	if err != nil {
		return false, fmt.Errorf("failed to save verification token: %w", err)
	}

	if err := uc.mailer.SendVerificationEmail(ctx, user, token); err != nil {
		authEvents.WithLabelValues("resend", "send_failed").Inc()
		return false, err
	}
	authEvents.WithLabelValues("resend", "ok").Inc()
	return true, nil
}

func (uc *authUseCase) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}

	userID, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id in token", models.ErrUnauthorized)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (uc *authUseCase) publish(ctx context.Context, name models.AccountEventName, user *models.User) {
	if err := uc.events.Publish(ctx, models.NewAccountEvent(name, user, uc.now())); err != nil {
		logger.Warnw(ctx, "failed to publish account event", "event", name, "error", err)
	}
}
