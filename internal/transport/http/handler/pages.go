package handler

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/ErlanBelekov/social-discovery/internal/view"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the pages that only need the current auth state.
type PageHandler struct {
	logger *slog.Logger
}

func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{logger: logger.With("component", "page_handler")}
}

// GET /
func (h *PageHandler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageHome, "", view.RouteHome)
}

// GET /matches
func (h *PageHandler) Matches(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageMatches, "Discover", view.RouteMatches)
}

// GET /matches/list
func (h *PageHandler) MatchesList(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageMatchesList, "Matches", view.RouteMatchesList)
}

// GET /chat
func (h *PageHandler) Chat(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageChat, "Messages", view.RouteChat)
}

// GET /profile
func (h *PageHandler) Profile(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageProfile, "Profile", view.RouteProfile)
}

func (h *PageHandler) NotFound(c *gin.Context) {
	page := view.NewPage("Not found", middleware.CurrentInstance(c).Store.Snapshot(), "")
	page.Message = errPageNotFound
	c.HTML(http.StatusNotFound, view.PageError, page)
}

func (h *PageHandler) render(c *gin.Context, status int, name, title, active string) {
	state := middleware.CurrentInstance(c).Store.Snapshot()
	c.HTML(status, name, view.NewPage(title, state, active))
}
