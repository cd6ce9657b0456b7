package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// Guard hydrates the browser session and enforces the page access rules:
// anonymous users are sent to the login page, signed-in users away from it.
// It must run after Session.
func Guard(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := sessions.Hydrate(c.Request().Context(), SessionID(c))
			if err != nil {
				return err
			}
			c.Set(ContextKeySession, sess)

			if redirect, ok := sessions.Guard(sess, c.Request().URL.Path); !ok {
				return c.Redirect(http.StatusSeeOther, redirect)
			}
			return next(c)
		}
	}
}
