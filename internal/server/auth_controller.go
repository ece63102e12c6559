package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/internal/models"
	pkgmdw "github.com/aitwy/aitwy-server/internal/server/middleware"
	"github.com/aitwy/aitwy-server/internal/usecase"
)

const (
	msgSignupOK          = "Registration successful! Please check your email to verify your account."
	msgLoginOK           = "Login successful"
	msgLogoutOK          = "Logged out successfully"
	msgVerifyOK          = "Email verified successfully! You can now log in to your account."
	msgResendOK          = "Verification email sent! Please check your inbox."
	msgResendUnknown     = "If an account with that email exists and is not verified, a verification email has been sent."
	msgEmailTaken        = "User with this email already exists"
	msgInvalidLogin      = "Invalid email or password"
	msgNotVerified       = "Please verify your email address before logging in. Check your inbox for the verification link."
	msgDisabled          = "Your account has been deactivated. Please contact support."
	msgInvalidToken      = "Invalid or expired verification token. Please request a new verification email."
	msgAlreadyVerified   = "This email address is already verified. You can log in to your account."
	msgResendSendFailed  = "Failed to send verification email. Please try again later."
	msgSignupFailed      = "Error creating user account"
	msgLoginFailed       = "Error logging in"
	msgFetchUserFailed   = "Error fetching user data"
	msgLogoutFailed      = "Error logging out"
	msgVerifyFailed      = "Error verifying email"
	msgResendFailed      = "Error resending verification email"
	msgNotAuthorizedUser = "Not authorized, user not found"
)

type AuthController interface {
	Signup(c echo.Context, req models.SignupRequest) (*pkgmdw.Response, error)
	Login(c echo.Context, req models.LoginRequest) (*pkgmdw.Response, error)
	Me(c echo.Context, req CurrentUserRequest) (*pkgmdw.Response, error)
	Logout(c echo.Context, req CurrentUserRequest) (*pkgmdw.Response, error)
	VerifyEmail(c echo.Context, req models.VerifyEmailRequest) (*pkgmdw.Response, error)
	ResendVerification(c echo.Context, req models.ResendVerificationRequest) (*pkgmdw.Response, error)
}

// CurrentUserRequest carries the account id set by the bearer middleware.
type CurrentUserRequest struct {
	UserID string `ctx:"user_id" validate:"required"`
}

type authController struct {
	authUsecase usecase.AuthUseCase
}

func NewAuthController(authUsecase usecase.AuthUseCase) AuthController {
	return &authController{
		authUsecase: authUsecase,
	}
}

func (ac *authController) Signup(c echo.Context, req models.SignupRequest) (*pkgmdw.Response, error) {
	res, err := ac.authUsecase.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, pkgmdw.NewResponseError(http.StatusBadRequest, msgEmailTaken, err)
		}
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgSignupFailed, err)
	}
	return pkgmdw.NewResponse(http.StatusCreated, msgSignupOK, res), nil
}

func (ac *authController) Login(c echo.Context, req models.LoginRequest) (*pkgmdw.Response, error) {
	res, err := ac.authUsecase.Login(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			return nil, pkgmdw.NewResponseError(http.StatusUnauthorized, msgInvalidLogin, err)
		case errors.Is(err, models.ErrEmailNotVerified):
			resErr := pkgmdw.NewResponseError(http.StatusUnauthorized, msgNotVerified, err)
			resErr.RequiresVerification = true
			return nil, resErr
		case errors.Is(err, models.ErrAccountDisabled):
			return nil, pkgmdw.NewResponseError(http.StatusUnauthorized, msgDisabled, err)
		}
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgLoginFailed, err)
	}
	return pkgmdw.NewResponse(http.StatusOK, msgLoginOK, res), nil
}

func (ac *authController) Me(c echo.Context, req CurrentUserRequest) (*pkgmdw.Response, error) {
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, pkgmdw.NewResponseError(http.StatusUnauthorized, msgNotAuthorizedUser, err)
	}

	res, err := ac.authUsecase.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			return nil, pkgmdw.NewResponseError(http.StatusUnauthorized, msgNotAuthorizedUser, err)
		}
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgFetchUserFailed, err)
	}
	return pkgmdw.NewResponse(http.StatusOK, "", res), nil
}

func (ac *authController) Logout(c echo.Context, _ CurrentUserRequest) (*pkgmdw.Response, error) {
	if err := ac.authUsecase.Logout(c.Request().Context(), pkgmdw.GetUser(c)); err != nil {
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgLogoutFailed, err)
	}
	return pkgmdw.NewResponse(http.StatusOK, msgLogoutOK, nil), nil
}

func (ac *authController) VerifyEmail(c echo.Context, req models.VerifyEmailRequest) (*pkgmdw.Response, error) {
	res, err := ac.authUsecase.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, models.ErrInvalidVerificationToken) {
			return nil, pkgmdw.NewResponseError(http.StatusBadRequest, msgInvalidToken, err)
		}
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgVerifyFailed, err)
	}
	return pkgmdw.NewResponse(http.StatusOK, msgVerifyOK, res), nil
}

func (ac *authController) ResendVerification(c echo.Context, req models.ResendVerificationRequest) (*pkgmdw.Response, error) {
	sent, err := ac.authUsecase.ResendVerification(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyVerified):
			return nil, pkgmdw.NewResponseError(http.StatusBadRequest, msgAlreadyVerified, err)
		case errors.Is(err, models.ErrSendEmail):
			return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgResendSendFailed, err)
		}
		return nil, pkgmdw.NewResponseError(http.StatusInternalServerError, msgResendFailed, err)
	}
	if !sent {
		return pkgmdw.NewResponse(http.StatusOK, msgResendUnknown, nil), nil
	}
	return pkgmdw.NewResponse(http.StatusOK, msgResendOK, nil), nil
}
