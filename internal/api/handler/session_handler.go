package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// SessionHandler exposes the browser session as JSON for programmatic clients.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type sessionRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	State         domain.SessionState `json:"state"`
	User          *domain.User        `json:"user,omitempty"`
}

// Create logs the browser session in.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /session [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	res := h.sessions.Login(c.Request().Context(), middleware.SessionID(c), req.Username, req.Password)
	if !res.OK {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: res.Message})
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		State:         domain.StateAuthenticated,
		User:          res.User,
	})
}

// Delete logs the browser session out. It succeeds whatever the prior state.
//
// @Summary      Log out
// @Tags         session
// @Success      204
// @Router       /session [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	h.sessions.Logout(c.Request().Context(), middleware.SessionID(c))
	return c.NoContent(http.StatusNoContent)
}

// Get reports the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: sess.Authenticated(),
		State:         h.sessions.State(middleware.SessionID(c), sess),
		User:          sess.User,
	})
}
