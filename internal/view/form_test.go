package view_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/view"
)

type fakeAuth struct {
	signUp func(ctx context.Context, email, password string) (*domain.SignUpResult, error)
	signIn func(ctx context.Context, email, password string) (*domain.Session, error)

	gotEmail    string
	gotPassword string
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.signUp(ctx, email, password)
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.signIn(ctx, email, password)
}

func ada() *domain.User {
	return &domain.User{ID: "u1", Email: "ada@example.com"}
}

func TestSubmit_SignIn_Success(t *testing.T) {
	auth := &fakeAuth{
		signIn: func(context.Context, string, string) (*domain.Session, error) {
			return &domain.Session{AccessToken: "tok", User: *ada()}, nil
		},
	}
	f := view.NewAuthForm(view.ModeSignIn)
	f.Email, f.Password = "ada@example.com", "secret"

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Error != "" {
		t.Errorf("error = %q, want none", f.Error)
	}
	if auth.gotEmail != "ada@example.com" || auth.gotPassword != "secret" {
		t.Errorf("credentials sent = %q/%q", auth.gotEmail, auth.gotPassword)
	}
	if f.Loading {
		t.Error("loading still set after submit")
	}
	if f.Password != "" {
		t.Error("password kept after submit")
	}
}

func TestSubmit_SignIn_InvalidCredentials_ShowsMessageVerbatim(t *testing.T) {
	auth := &fakeAuth{
		signIn: func(context.Context, string, string) (*domain.Session, error) {
			return nil, domain.NewAuthError(domain.KindInvalidCredentials, 400, "Invalid login credentials")
		},
	}
	f := view.NewAuthForm(view.ModeSignIn)
	f.Email, f.Password = "ada@example.com", "wrong"

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Error != "Invalid login credentials" {
		t.Errorf("error = %q", f.Error)
	}
	if f.Mode != view.ModeSignIn {
		t.Errorf("mode = %q", f.Mode)
	}
}

func TestSubmit_SignUp_WithoutSession_ShowsConfirmNotice(t *testing.T) {
	auth := &fakeAuth{
		signUp: func(context.Context, string, string) (*domain.SignUpResult, error) {
			return &domain.SignUpResult{User: ada()}, nil
		},
	}
	f := view.NewAuthForm(view.ModeSignUp)
	f.Email, f.Password = "ada@example.com", "secret"

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Notice != view.ConfirmEmailNotice {
		t.Errorf("notice = %q", f.Notice)
	}
	if f.Error != "" {
		t.Errorf("error = %q, want none", f.Error)
	}
	if f.Mode != view.ModeSignIn {
		t.Errorf("mode = %q, want signin", f.Mode)
	}
}

func TestSubmit_SignUp_WithSession_SwitchesToSignIn(t *testing.T) {
	auth := &fakeAuth{
		signUp: func(context.Context, string, string) (*domain.SignUpResult, error) {
			u := ada()
			return &domain.SignUpResult{User: u, Session: &domain.Session{AccessToken: "tok", User: *u}}, nil
		},
	}
	f := view.NewAuthForm(view.ModeSignUp)

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Notice != "" {
		t.Errorf("notice = %q, want none", f.Notice)
	}
	if f.Mode != view.ModeSignIn {
		t.Errorf("mode = %q, want signin", f.Mode)
	}
}

func TestSubmit_SignUp_Rejected_StaysInSignUp(t *testing.T) {
	auth := &fakeAuth{
		signUp: func(context.Context, string, string) (*domain.SignUpResult, error) {
			return nil, domain.NewAuthError(domain.KindUserExists, 422, "User already registered")
		},
	}
	f := view.NewAuthForm(view.ModeSignUp)

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Error != "User already registered" {
		t.Errorf("error = %q", f.Error)
	}
	if f.Mode != view.ModeSignUp {
		t.Errorf("mode = %q, want signup", f.Mode)
	}
}

func TestSubmit_TransportError_IsReturned(t *testing.T) {
	boom := errors.New("connection refused")
	auth := &fakeAuth{
		signIn: func(context.Context, string, string) (*domain.Session, error) { return nil, boom },
	}
	f := view.NewAuthForm(view.ModeSignIn)

	err := f.Submit(context.Background(), auth)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if f.Error != "" {
		t.Errorf("error = %q, want none for transport failures", f.Error)
	}
	if f.Loading {
		t.Error("loading still set after failure")
	}
}

func TestSubmit_ClearsPreviousMessages(t *testing.T) {
	auth := &fakeAuth{
		signIn: func(context.Context, string, string) (*domain.Session, error) {
			return &domain.Session{User: *ada()}, nil
		},
	}
	f := view.NewAuthForm(view.ModeSignIn)
	f.Error = "old error"
	f.Notice = "old notice"

	if err := f.Submit(context.Background(), auth); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.Error != "" || f.Notice != "" {
		t.Errorf("messages not cleared: error=%q notice=%q", f.Error, f.Notice)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want view.Mode
	}{
		{"signup", view.ModeSignUp},
		{"signin", view.ModeSignIn},
		{"", view.ModeSignIn},
		{"admin", view.ModeSignIn},
	}
	for _, tt := range tests {
		if got := view.ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		name  string
		state domain.AuthState
		want  bool
	}{
		{"signed in", domain.AuthState{User: ada(), Phase: domain.PhaseResolved}, true},
		{"signed in but loading", domain.AuthState{User: ada(), Loading: true, Phase: domain.PhaseChecking}, false},
		{"signed out", domain.AuthState{Phase: domain.PhaseResolved}, false},
		{"unknown", domain.AuthState{Phase: domain.PhaseUnknown}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := view.RedirectTarget(tt.state)
			if ok != tt.want {
				t.Fatalf("ok = %v, want %v", ok, tt.want)
			}
			if ok && target != view.RouteHome {
				t.Errorf("target = %q, want %q", target, view.RouteHome)
			}
		})
	}
}
