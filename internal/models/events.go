package models

import (
	"time"
)

type AccountEventName string

const (
	EventUserRegistered AccountEventName = "user.registered"
	EventUserVerified   AccountEventName = "user.verified"
	EventUserLoggedIn   AccountEventName = "user.logged_in"
)

// AccountEvent is published after an account state change has been persisted.
type AccountEvent struct {
	Name       AccountEventName `json:"name"`
	UserID     string           `json:"user_id"`
	Email      string           `json:"email"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func NewAccountEvent(name AccountEventName, u *User, at time.Time) AccountEvent {
	return AccountEvent{
		Name:       name,
		UserID:     u.ID.Hex(),
		Email:      u.Email,
		OccurredAt: at.UTC(),
	}
}
