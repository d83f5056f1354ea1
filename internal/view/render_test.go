package view_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/view"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	w := httptest.NewRecorder()
	if err := r.Instance(name, data).Render(w); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return w.Body.String()
}

func TestRenderer_AllPagesParse(t *testing.T) {
	pages := []string{
		view.PageHome, view.PageAuth, view.PageMatches, view.PageMatchesList,
		view.PageChat, view.PageProfile, view.PageError,
	}
	for _, name := range pages {
		t.Run(name, func(t *testing.T) {
			page := view.NewPage(name, domain.AuthState{Phase: domain.PhaseResolved}, "")
			page.Form = view.NewAuthForm(view.ModeSignIn)
			body := render(t, name, page)
			if !strings.Contains(body, "Social Discovery") {
				t.Error("layout not rendered")
			}
		})
	}
}

func TestRenderer_NavReflectsState(t *testing.T) {
	out := render(t, view.PageHome, view.NewPage("", domain.AuthState{Phase: domain.PhaseResolved}, ""))
	if !strings.Contains(out, "Log in") || !strings.Contains(out, "Join Now") {
		t.Error("signed-out nav missing Log in / Join Now")
	}
	if strings.Contains(out, "Log out") {
		t.Error("signed-out nav shows Log out")
	}

	in := render(t, view.PageHome, view.NewPage("", domain.AuthState{User: ada(), Phase: domain.PhaseResolved}, ""))
	if !strings.Contains(in, "Log out") {
		t.Error("signed-in nav missing Log out")
	}
	if strings.Contains(in, `href="/auth">Log in`) {
		t.Error("signed-in nav shows Log in")
	}
}

func TestRenderer_AuthFormNeverEchoesPassword(t *testing.T) {
	page := view.NewPage("Sign in", domain.AuthState{Phase: domain.PhaseResolved}, "")
	page.Form = &view.AuthForm{Email: "ada@example.com", Password: "hunter2", Mode: view.ModeSignUp, Error: "Password should be at least 6 characters"}

	out := render(t, view.PageAuth, page)
	if strings.Contains(out, "hunter2") {
		t.Error("password rendered back")
	}
	for _, want := range []string{"ada@example.com", "Create Your Account", "Sign Up", "Password should be at least 6 characters"} {
		if !strings.Contains(out, want) {
			t.Errorf("auth page missing %q", want)
		}
	}
}

func TestRenderer_UnknownPageFallsBackToError(t *testing.T) {
	out := render(t, "nope", nil)
	if !strings.Contains(out, "Page not found") {
		t.Error("unknown page did not render not-found")
	}
}
