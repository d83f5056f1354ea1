package domain

import (
	"errors"
	"fmt"
)

type AuthErrorKind string

const (
	KindInvalidCredentials AuthErrorKind = "invalid_credentials"
	KindEmailNotConfirmed  AuthErrorKind = "email_not_confirmed"
	KindUserExists         AuthErrorKind = "user_already_exists"
	KindWeakPassword       AuthErrorKind = "weak_password"
	KindRateLimited        AuthErrorKind = "rate_limited"
	KindValidation         AuthErrorKind = "validation"
	KindUnknown            AuthErrorKind = "unknown"
)

// AuthError is a failure reported by the hosted auth service. Message is
// shown to users verbatim.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Status  int
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError builds an AuthError, falling back to a generic message so the
// form never renders an empty error.
func NewAuthError(kind AuthErrorKind, status int, message string) *AuthError {
	if message == "" {
		message = fmt.Sprintf("authentication failed (status %d)", status)
	}
	if kind == "" {
		kind = KindUnknown
	}
	return &AuthError{Kind: kind, Message: message, Status: status}
}

// AsAuthError unwraps err into an *AuthError if it carries one.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
