package api

import (
	"fmt"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/callanalyzer/dashboard/internal/api/handler"
	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/api/web"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/internal/infrastructure/http/handlers"

	_ "github.com/callanalyzer/dashboard/docs"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions ports.SessionService
	Source   ports.DataSource
	Session  middleware.SessionConfig
	// BackendURL resolves relative audio links; empty when the fixture source is used.
	BackendURL     string
	DemoEnabled    bool
	MaxUploadBytes int64
	Checks         []handlers.Check
	// Registerer and Gatherer back the HTTP metrics; nil means the
	// prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	httpMetrics, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "dashboard",
		Registerer: d.Registerer,
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Sessions, d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(httpMetrics)
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf",
		CookieName:     "dashboard_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.Session.Secure,
		Skipper: func(c echo.Context) bool {
			return hasPrefix(c.Request().URL.Path, "/session", "/health", "/metrics", "/static", "/swagger")
		},
	}))
	e.Use(middleware.Session(d.Session))

	// --- Health probes, metrics and docs (no session guard) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", web.Static())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.DemoEnabled, d.Logger)
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	dashboardHandler := handler.NewDashboardHandler(d.Source, d.Logger)
	agentHandler := handler.NewAgentHandler(d.Source, d.Logger)
	recordingHandler := handler.NewRecordingHandler(d.Source, d.BackendURL, d.Logger)
	uploadHandler := handler.NewUploadHandler(d.Source, d.MaxUploadBytes, d.Logger)

	guard := middleware.Guard(d.Sessions)

	// --- Pages ---
	pages := e.Group("", guard)
	pages.GET("/", authHandler.Landing)
	pages.GET("/login", authHandler.LoginPage)
	pages.POST("/login", authHandler.Login)
	if d.DemoEnabled {
		pages.POST("/login/demo", authHandler.DemoLogin)
	}
	pages.POST("/logout", authHandler.Logout)

	pages.GET("/dashboard", dashboardHandler.Show)
	pages.GET("/agents", agentHandler.List)
	pages.GET("/agents/:id", agentHandler.Show)

	pages.GET("/call-recordings", recordingHandler.List)
	pages.GET("/call-recordings/export.xlsx", recordingHandler.Export)
	pages.GET("/call-recordings/upload", uploadHandler.Form)
	pages.POST("/call-recordings/upload", uploadHandler.Submit, uploadBodyLimit(d.MaxUploadBytes))
	pages.GET("/call-recordings/:id", recordingHandler.Show)
	pages.GET("/call-recordings/:id/transcript.txt", recordingHandler.Transcript)

	// --- Session API ---
	session := e.Group("/session", guard)
	session.GET("", sessionHandler.Get)
	session.POST("", sessionHandler.Create)
	session.DELETE("", sessionHandler.Delete)

	return e, nil
}

// uploadBodyLimit caps the request body slightly above the file limit so the
// form fields still fit and oversized files are reported by the handler.
func uploadBodyLimit(maxBytes int64) echo.MiddlewareFunc {
	if maxBytes <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomiddleware.BodyLimit(fmt.Sprintf("%dK", (maxBytes>>10)+1024))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return hasPrefix(c.Request().URL.Path, "/health", "/metrics", "/static")
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func hasPrefix(p string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
