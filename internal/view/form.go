package view

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/metrics"
)

type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode defaults anything unrecognised to sign-in.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

const ConfirmEmailNotice = "Please check your email to confirm your account"

// Authenticator is the part of the session client the form submits to.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
}

// AuthForm is the ephemeral state of the sign-in / sign-up form. It lives
// for one request.
type AuthForm struct {
	Email    string
	Password string
	Mode     Mode
	Loading  bool
	Error    string
	Notice   string
}

func NewAuthForm(mode Mode) *AuthForm {
	return &AuthForm{Mode: mode}
}

func (f *AuthForm) IsSignUp() bool { return f.Mode == ModeSignUp }

// Submit sends the credentials to auth according to Mode. Failures reported
// by the auth service land in f.Error; any other failure is returned.
// Redirecting on success is left to RedirectTarget.
func (f *AuthForm) Submit(ctx context.Context, auth Authenticator) (err error) {
	mode := f.Mode
	f.Loading = true
	f.Error = ""
	f.Notice = ""
	defer func() {
		f.Loading = false
		f.Password = ""
		metrics.FormSubmissionsTotal.WithLabelValues(string(mode), f.outcome(err)).Inc()
	}()

	if f.IsSignUp() {
		return f.signUp(ctx, auth)
	}
	return f.signIn(ctx, auth)
}

func (f *AuthForm) signUp(ctx context.Context, auth Authenticator) error {
	res, err := auth.SignUp(ctx, f.Email, f.Password)
	if err != nil {
		return f.fail(err)
	}
	if res.User != nil && res.Session == nil {
		f.Notice = ConfirmEmailNotice
	}
	f.Mode = ModeSignIn
	return nil
}

func (f *AuthForm) signIn(ctx context.Context, auth Authenticator) error {
	if _, err := auth.SignInWithPassword(ctx, f.Email, f.Password); err != nil {
		return f.fail(err)
	}
	return nil
}

func (f *AuthForm) fail(err error) error {
	if ae, ok := domain.AsAuthError(err); ok {
		f.Error = ae.Message
		return nil
	}
	return fmt.Errorf("submit %s: %w", f.Mode, err)
}

func (f *AuthForm) outcome(err error) string {
	switch {
	case err != nil:
		return "error"
	case f.Error != "":
		return "rejected"
	default:
		return "ok"
	}
}

// RedirectTarget returns where the auth page should send a user once the
// store has settled on a signed-in user.
func RedirectTarget(state domain.AuthState) (string, bool) {
	if state.User != nil && !state.Loading {
		return RouteHome, true
	}
	return "", false
}
