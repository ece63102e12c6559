package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/pkg/secret"
)

// verificationTokenBytes is the raw entropy of an emailed verification token.
const verificationTokenBytes = 32

type User struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                     string             `bson:"name" json:"name"`
	Email                    string             `bson:"email" json:"email"`
	Password                 string             `bson:"password,omitempty" json:"-"`
	IsEmailVerified          bool               `bson:"is_email_verified" json:"isEmailVerified"`
	IsActive                 bool               `bson:"is_active" json:"isActive"`
	EmailVerificationToken   *string            `bson:"email_verification_token,omitempty" json:"-"`
	EmailVerificationExpires *time.Time         `bson:"email_verification_expires,omitempty" json:"-"`
	LastLogin                *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt                time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (User) CollectionName() string {
	return "users"
}

// LoginBlock returns why the account may not log in, or nil. Verification is
// checked before deactivation.
func (u *User) LoginBlock() error {
	switch {
	case !u.IsEmailVerified:
		return ErrEmailNotVerified
	case !u.IsActive:
		return ErrAccountDisabled
	}
	return nil
}

func (u *User) SetPassword(plain string, cost int) error {
	hash, err := secret.HashPassword(plain, cost)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// ComparePassword requires the password field to have been loaded.
func (u *User) ComparePassword(plain string) bool {
	return secret.CheckPassword(plain, u.Password)
}

// GenerateVerificationToken stores the digest and expiry on u and returns the
// raw token, which is only ever sent to the user.
func (u *User) GenerateVerificationToken(now time.Time, ttl time.Duration) (string, error) {
	raw, err := secret.NewToken(verificationTokenBytes)
	if err != nil {
		return "", err
	}
	digest := secret.HashToken(raw)
	expires := now.Add(ttl)
	u.EmailVerificationToken = &digest
	u.EmailVerificationExpires = &expires
	return raw, nil
}

// MarkVerified applies the state change performed on successful verification.
func (u *User) MarkVerified(now time.Time) {
	u.IsEmailVerified = true
	u.IsActive = true
	u.EmailVerificationToken = nil
	u.EmailVerificationExpires = nil
	u.UpdatedAt = now
}
