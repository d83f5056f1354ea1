package domain

import (
	"errors"
	"time"
)

var ErrTokenInvalid = errors.New("token is invalid or expired")

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is issued by the hosted auth service. It is stored and passed
// around but never minted here.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// ExpiresWithin reports whether the session expires before now+margin.
func (s *Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(margin))
}

// SignUpResult carries what the service returned for a sign-up. Session is
// nil when the account still needs email confirmation.
type SignUpResult struct {
	User    *User
	Session *Session
}

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)
