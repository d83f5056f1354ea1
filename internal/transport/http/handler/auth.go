package handler

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/ErlanBelekov/social-discovery/internal/view"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	logger *slog.Logger
}

func NewAuthHandler(logger *slog.Logger) *AuthHandler {
	return &AuthHandler{logger: logger.With("component", "auth_handler")}
}

type credentialsRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Mode     string `form:"mode"`
}

// GET /auth?mode=signin|signup
// Signed-in users are sent home instead of seeing the form.
func (h *AuthHandler) Show(c *gin.Context) {
	state := middleware.CurrentInstance(c).Store.Snapshot()
	if target, ok := view.RedirectTarget(state); ok {
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	page := view.NewPage(title(view.ParseMode(c.Query("mode"))), state, view.RouteAuth)
	page.Form = view.NewAuthForm(view.ParseMode(c.Query("mode")))
	c.HTML(http.StatusOK, view.PageAuth, page)
}

// POST /auth
// Auth service rejections re-render the form with the message inline;
// anything else is a 502.
func (h *AuthHandler) Submit(c *gin.Context) {
	inst := middleware.CurrentInstance(c)

	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		form := view.NewAuthForm(view.ParseMode(c.PostForm("mode")))
		form.Email = c.PostForm("email")
		form.Error = errInvalidInput
		h.renderForm(c, http.StatusBadRequest, form)
		return
	}

	form := view.NewAuthForm(view.ParseMode(req.Mode))
	form.Email = req.Email
	form.Password = req.Password

	if err := form.Submit(c.Request.Context(), inst.Client); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "submit credentials", "mode", req.Mode, "error", err)
		page := view.NewPage("Unavailable", inst.Store.Snapshot(), "")
		page.Message = errAuthUnavailable
		c.HTML(http.StatusBadGateway, view.PageError, page)
		return
	}

	if target, ok := view.RedirectTarget(inst.Store.Snapshot()); ok {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	h.renderForm(c, http.StatusOK, form)
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.CurrentInstance(c).Store.SignOut(c.Request.Context())
	c.Redirect(http.StatusSeeOther, view.RouteHome)
}

func (h *AuthHandler) renderForm(c *gin.Context, status int, form *view.AuthForm) {
	page := view.NewPage(title(form.Mode), middleware.CurrentInstance(c).Store.Snapshot(), view.RouteAuth)
	page.Form = form
	c.HTML(status, view.PageAuth, page)
}

func title(mode view.Mode) string {
	if mode == view.ModeSignUp {
		return "Sign up"
	}
	return "Sign in"
}
