package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// CookieName is the cookie carrying the signed browser session id.
const CookieName = "dashboard_session"

// Echo context keys set by this package.
const (
	ContextKeySID     = "sid"
	ContextKeySession = "session"
)

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Logger zerolog.Logger
}

// Session resolves the browser session id from the signed cookie, minting a new
// one when the cookie is missing, tampered with or expired. The id is attached
// to both the echo context and the request context. The cookie is re-issued once
// half its lifetime has passed.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseSessionCookie(c, cfg.Secret)
			now := time.Now()

			sid := ""
			if err == nil {
				sid = claims.SID
			} else if !errors.Is(err, http.ErrNoCookie) {
				cfg.Logger.Debug().Err(err).Msg("discarding invalid session cookie")
			}

			if sid == "" {
				sid = uuid.NewString()
				if err := issueSessionCookie(c, cfg, sid, now); err != nil {
					return err
				}
			} else if claims.IssuedAt != nil && now.Sub(claims.IssuedAt.Time) > cfg.TTL/2 {
				if err := issueSessionCookie(c, cfg, sid, now); err != nil {
					return err
				}
			}

			c.Set(ContextKeySID, sid)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithSessionID(req.Context(), sid)))
			return next(c)
		}
	}
}

func parseSessionCookie(c echo.Context, secret []byte) (*sessionClaims, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.SID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func issueSessionCookie(c echo.Context, cfg SessionConfig, sid string, now time.Time) error {
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionID returns the browser session id set by Session.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(ContextKeySID).(string)
	return sid
}

// CurrentSession returns the session hydrated by Guard; anonymous when absent.
func CurrentSession(c echo.Context) domain.Session {
	s, _ := c.Get(ContextKeySession).(domain.Session)
	return s
}
