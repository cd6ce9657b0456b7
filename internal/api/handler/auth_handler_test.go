package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// stubSessions implements ports.SessionService.
type stubSessions struct {
	loginFn   func(ctx context.Context, sid, username, password string) ports.LoginResult
	logoutSID string
	state     domain.SessionState
}

func (s *stubSessions) Login(ctx context.Context, sid, username, password string) ports.LoginResult {
	return s.loginFn(ctx, sid, username, password)
}

func (s *stubSessions) Logout(_ context.Context, sid string) string {
	s.logoutSID = sid
	return domain.PathLogin
}

func (s *stubSessions) Hydrate(context.Context, string) (domain.Session, error) {
	return domain.Session{}, nil
}

func (s *stubSessions) Guard(domain.Session, string) (string, bool) { return "", true }

func (s *stubSessions) State(_ string, session domain.Session) domain.SessionState {
	if s.state != "" {
		return s.state
	}
	return session.State()
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestAuth_LoginSuccessRedirects(t *testing.T) {
	e, _ := newTestEcho()
	var gotSID, gotUser string
	h := NewAuthHandler(&stubSessions{loginFn: func(_ context.Context, sid, username, _ string) ports.LoginResult {
		gotSID, gotUser = sid, username
		return ports.LoginResult{OK: true, Redirect: domain.PathDashboard}
	}}, false, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/login", url.Values{"username": {"demo"}, "password": {"password"}}), rec)
	c.Set(middleware.ContextKeySID, "sid-1")
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if gotSID != "sid-1" || gotUser != "demo" {
		t.Fatalf("unexpected login call sid=%s user=%s", gotSID, gotUser)
	}
}

func TestAuth_LoginFailureRendersMessage(t *testing.T) {
	e, r := newTestEcho()
	h := NewAuthHandler(&stubSessions{loginFn: func(context.Context, string, string, string) ports.LoginResult {
		return ports.LoginResult{Message: "Unable to log in with provided credentials."}
	}}, true, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/login", url.Values{"username": {"demo"}, "password": {"nope"}}), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || r.name != "login" {
		t.Fatalf("expected login 401, got %s %d", r.name, rec.Code)
	}
	view := r.page.Data.(loginView)
	if view.Message != "Unable to log in with provided credentials." || view.Username != "demo" || !view.DemoEnabled {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestAuth_LoginEmptyFieldsSkipsService(t *testing.T) {
	e, r := newTestEcho()
	h := NewAuthHandler(&stubSessions{loginFn: func(context.Context, string, string, string) ports.LoginResult {
		t.Fatal("service must not be called")
		return ports.LoginResult{}
	}}, false, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/login", url.Values{"username": {"demo"}}), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if msg := r.page.Data.(loginView).Message; msg != "password is required" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAuth_DemoLoginUsesDemoAccount(t *testing.T) {
	e, _ := newTestEcho()
	var user, pass string
	h := NewAuthHandler(&stubSessions{loginFn: func(_ context.Context, _, u, p string) ports.LoginResult {
		user, pass = u, p
		return ports.LoginResult{OK: true, Redirect: domain.PathDashboard}
	}}, true, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login/demo", nil), rec)
	if err := h.DemoLogin(c); err != nil {
		t.Fatalf("DemoLogin: %v", err)
	}
	if user != demoUsername || pass != demoPassword {
		t.Fatalf("unexpected credentials %s/%s", user, pass)
	}
}

func TestAuth_Logout(t *testing.T) {
	e, _ := newTestEcho()
	stub := &stubSessions{}
	h := NewAuthHandler(stub, false, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)
	c.Set(middleware.ContextKeySID, "sid-9")
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if stub.logoutSID != "sid-9" || rec.Header().Get("Location") != "/login" {
		t.Fatalf("unexpected logout: sid=%s location=%s", stub.logoutSID, rec.Header().Get("Location"))
	}
}

func TestSession_CreateAndGet(t *testing.T) {
	e, _ := newTestEcho()
	user := &domain.User{ID: 1, Username: "demo"}
	h := NewSessionHandler(&stubSessions{loginFn: func(context.Context, string, string, string) ports.LoginResult {
		return ports.LoginResult{OK: true, User: user, Redirect: domain.PathDashboard}
	}})

	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"username":"demo","password":"password"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	var created sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || !created.Authenticated || created.User.Username != "demo" {
		t.Fatalf("unexpected create response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)
	c.Set(middleware.ContextKeySession, domain.Session{Token: "t", User: user})
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Authenticated || got.State != domain.StateAuthenticated {
		t.Fatalf("unexpected get response %s", rec.Body.String())
	}
}

func TestSession_CreateRejected(t *testing.T) {
	e, _ := newTestEcho()
	h := NewSessionHandler(&stubSessions{loginFn: func(context.Context, string, string, string) ports.LoginResult {
		return ports.LoginResult{Message: "Unable to log in with provided credentials."}
	}})

	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"username":"demo","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Unable to log in") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestSession_Delete(t *testing.T) {
	e, _ := newTestEcho()
	stub := &stubSessions{}
	h := NewSessionHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/session", nil), rec)
	c.Set(middleware.ContextKeySID, "sid-3")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.logoutSID != "sid-3" {
		t.Fatalf("unexpected delete: %d sid=%s", rec.Code, stub.logoutSID)
	}
}
