package view

import "github.com/ErlanBelekov/social-discovery/internal/domain"

type NavLink struct {
	Name string
	Href string
	Icon string
}

// NavBar is the header shown on every page.
type NavBar struct {
	Links  []NavLink
	User   *domain.User
	Active string
}

var navLinks = []NavLink{
	{Name: "Discover", Href: RouteMatches, Icon: "globe"},
	{Name: "Matches", Href: RouteMatchesList, Icon: "users"},
	{Name: "Messages", Href: RouteChat, Icon: "message-circle"},
	{Name: "Profile", Href: RouteProfile, Icon: "user"},
}

// NewNavBar picks the affordances for state: "Log out" when signed in,
// "Log in" and "Join Now" otherwise.
func NewNavBar(state domain.AuthState, active string) NavBar {
	links := make([]NavLink, len(navLinks))
	copy(links, navLinks)
	return NavBar{Links: links, User: state.User, Active: active}
}

func (n NavBar) SignedIn() bool { return n.User != nil }

func (n NavBar) LoginHref() string { return RouteAuth }

func (n NavBar) JoinHref() string { return RouteAuth + "?mode=" + string(ModeSignUp) }

func (n NavBar) LogoutAction() string { return RouteLogout }
