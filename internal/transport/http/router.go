package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/social-discovery/internal/authstate"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/ErlanBelekov/social-discovery/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	renderer render.HTMLRender,
	registry *authstate.Registry,
	limiter *middleware.RateLimiter,
	secureCookie bool,
	pageHandler *handler.PageHandler,
	authHandler *handler.AuthHandler,
	eventsHandler *handler.EventsHandler,
) *gin.Engine {
	r := gin.New()
	r.HTMLRender = renderer
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Instance(registry, secureCookie))

	r.GET(view.RouteHome, pageHandler.Home)
	r.GET(view.RouteMatches, pageHandler.Matches)
	r.GET(view.RouteMatchesList, pageHandler.MatchesList)
	r.GET(view.RouteChat, pageHandler.Chat)
	r.GET(view.RouteProfile, pageHandler.Profile)

	r.GET(view.RouteAuth, authHandler.Show)
	r.POST(view.RouteAuth, limiter.Middleware(), authHandler.Submit)
	r.POST(view.RouteLogout, authHandler.Logout)

	r.GET(view.RouteEvents, eventsHandler.Stream)

	r.NoRoute(pageHandler.NotFound)

	return r
}
