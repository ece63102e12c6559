package models

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrEmailTaken               = errors.New("user with this email already exists")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailNotVerified         = errors.New("email address not verified")
	ErrAccountDisabled          = errors.New("account deactivated")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrAlreadyVerified          = errors.New("email already verified")
	ErrUnauthorized             = errors.New("not authorized")
	ErrSendEmail                = errors.New("failed to send email")
)
