package view_test

import (
	"testing"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/view"
)

func TestNewNavBar_Links(t *testing.T) {
	nav := view.NewNavBar(domain.AuthState{Phase: domain.PhaseResolved}, view.RouteChat)

	want := []struct{ name, href string }{
		{"Discover", "/matches"},
		{"Matches", "/matches/list"},
		{"Messages", "/chat"},
		{"Profile", "/profile"},
	}
	if len(nav.Links) != len(want) {
		t.Fatalf("links = %d, want %d", len(nav.Links), len(want))
	}
	for i, w := range want {
		if nav.Links[i].Name != w.name || nav.Links[i].Href != w.href {
			t.Errorf("link %d = %+v, want %s %s", i, nav.Links[i], w.name, w.href)
		}
	}
	if nav.Active != view.RouteChat {
		t.Errorf("active = %q", nav.Active)
	}
}

func TestNewNavBar_SignedOut(t *testing.T) {
	nav := view.NewNavBar(domain.AuthState{Phase: domain.PhaseResolved}, "")
	if nav.SignedIn() {
		t.Fatal("signed in without a user")
	}
	if nav.LoginHref() != "/auth" {
		t.Errorf("login href = %q", nav.LoginHref())
	}
	if nav.JoinHref() != "/auth?mode=signup" {
		t.Errorf("join href = %q", nav.JoinHref())
	}
}

func TestNewNavBar_SignedIn(t *testing.T) {
	nav := view.NewNavBar(domain.AuthState{User: ada(), Phase: domain.PhaseResolved}, "")
	if !nav.SignedIn() {
		t.Fatal("not signed in with a user")
	}
	if nav.LogoutAction() != "/logout" {
		t.Errorf("logout action = %q", nav.LogoutAction())
	}
}

func TestNewNavBar_LinksAreNotShared(t *testing.T) {
	a := view.NewNavBar(domain.AuthState{}, "")
	a.Links[0].Name = "changed"

	b := view.NewNavBar(domain.AuthState{}, "")
	if b.Links[0].Name != "Discover" {
		t.Fatalf("nav links mutated across calls: %q", b.Links[0].Name)
	}
}
