package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// Demo account offered on the login page when the fixture data source is active.
const (
	demoUsername = "demo"
	demoPassword = "password"
)

// AuthHandler serves the landing, login and logout pages.
type AuthHandler struct {
	sessions ports.SessionService
	demo     bool
	log      zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, demo bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, demo: demo, log: log}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginView struct {
	Username    string
	Message     string
	DemoEnabled bool
}

func (h *AuthHandler) Landing(c echo.Context) error {
	return render(c, "landing", newPage(c, "Welcome", "", nil))
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return render(c, "login", newPage(c, "Log in", "", loginView{DemoEnabled: h.demo}))
}

// Login handles the login form. Failures re-render the form with the reason.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return h.loginFailed(c, form.Username, err.Error())
	}
	return h.login(c, form.Username, form.Password)
}

// DemoLogin signs in with the demo account.
func (h *AuthHandler) DemoLogin(c echo.Context) error {
	return h.login(c, demoUsername, demoPassword)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	next := h.sessions.Logout(c.Request().Context(), middleware.SessionID(c))
	return c.Redirect(http.StatusSeeOther, next)
}

func (h *AuthHandler) login(c echo.Context, username, password string) error {
	res := h.sessions.Login(c.Request().Context(), middleware.SessionID(c), username, password)
	if !res.OK {
		return h.loginFailed(c, username, res.Message)
	}
	return c.Redirect(http.StatusSeeOther, res.Redirect)
}

func (h *AuthHandler) loginFailed(c echo.Context, username, msg string) error {
	p := newPage(c, "Log in", "", loginView{Username: username, Message: msg, DemoEnabled: h.demo})
	return c.Render(http.StatusUnauthorized, "login", p)
}
