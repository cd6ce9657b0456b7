package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// page is the data every template receives. Data carries the page-specific view.
type page struct {
	Title string
	Nav   string
	User  *domain.User
	CSRF  string
	Error string
	Retry string
	Data  any
}

func newPage(c echo.Context, title, nav string, data any) page {
	csrf, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return page{
		Title: title,
		Nav:   nav,
		User:  middleware.CurrentSession(c).User,
		CSRF:  csrf,
		Retry: c.Request().URL.RequestURI(),
		Data:  data,
	}
}

func render(c echo.Context, name string, p page) error {
	return c.Render(http.StatusOK, name, p)
}

// isAuthError reports failures that must end in the login page rather than
// an inline error panel.
func isAuthError(err error) bool {
	return errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrUnauthorized)
}

// inlineError returns the message for an error panel, or err itself when the
// request has to be handed to the HTTP error handler instead.
func inlineError(err error) (string, error) {
	if isAuthError(err) {
		return "", err
	}
	return err.Error(), nil
}

type errorView struct {
	Status  int
	Message string
}

// RenderError renders the error page with status.
func RenderError(c echo.Context, status int, msg string) error {
	return c.Render(status, "error", newPage(c, http.StatusText(status), "", errorView{Status: status, Message: msg}))
}
