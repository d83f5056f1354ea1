package view

const (
	RouteHome        = "/"
	RouteAuth        = "/auth"
	RouteLogout      = "/logout"
	RouteMatches     = "/matches"
	RouteMatchesList = "/matches/list"
	RouteChat        = "/chat"
	RouteProfile     = "/profile"
	RouteEvents      = "/events"
)
