package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest represents the registration payload
type SignupRequest struct {
	Name     string `json:"name" label:"Name" validate:"required,min=2,max=50"`
	Email    string `json:"email" label:"Email" validate:"required,email"`
	Password string `json:"password" label:"Password" validate:"required,min=6"`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// LoginRequest represents the email/password login request
type LoginRequest struct {
	Email    string `json:"email" label:"Email" validate:"required,email"`
	Password string `json:"password" label:"Password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

type ResendVerificationRequest struct {
	Email string `json:"email" label:"Email" validate:"required,email"`
}

func (r *ResendVerificationRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

type VerifyEmailRequest struct {
	Token string `param:"token" label:"Token" validate:"required"`
}

// NormalizeEmail trims and lowercases an address so lookups match the stored
// form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserView is the public projection of a User. Which fields are populated
// depends on the endpoint.
type UserView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	IsEmailVerified *bool      `json:"isEmailVerified,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
}

func baseView(u *User) UserView {
	return UserView{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}

func SignupView(u *User) UserView {
	v := baseView(u)
	verified := u.IsEmailVerified
	createdAt := u.CreatedAt
	v.IsEmailVerified = &verified
	v.CreatedAt = &createdAt
	return v
}

func LoginView(u *User) UserView {
	v := baseView(u)
	v.LastLogin = u.LastLogin
	return v
}

func ProfileView(u *User) UserView {
	v := baseView(u)
	createdAt := u.CreatedAt
	v.CreatedAt = &createdAt
	v.LastLogin = u.LastLogin
	return v
}

func VerifiedView(u *User) UserView {
	v := baseView(u)
	verified := u.IsEmailVerified
	v.IsEmailVerified = &verified
	return v
}

type SignupResponse struct {
	User                 UserView `json:"user"`
	RequiresVerification bool     `json:"requiresVerification"`
}

type LoginResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

type UserResponse struct {
	User UserView `json:"user"`
}

// JWTClaims carries only the account id. Expiry and issue time live in the
// registered claims.
type JWTClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}
