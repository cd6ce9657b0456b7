package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/api/handler"
	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// errorResponse is the canonical error envelope for JSON errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends pages to the login screen when the session is missing or rejected.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error page, or {"error": "<message>"} for JSON clients.
func NewHTTPErrorHandler(sessions ports.SessionService, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// A rejected token is cleared before the redirect to the login page.
		if errors.Is(err, domain.ErrUnauthorized) {
			sessions.Logout(c.Request().Context(), middleware.SessionID(c))
		}

		code, msg := resolveError(err, log, c)
		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if code == http.StatusUnauthorized {
			_ = c.Redirect(http.StatusSeeOther, domain.PathLogin)
			return
		}
		if rerr := handler.RenderError(c, code, msg); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, CSRF, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to view this page."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "The page you are looking for does not exist."
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something went wrong. Please try again."
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.URL.Path, "/session") || strings.HasPrefix(req.URL.Path, "/health") {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
