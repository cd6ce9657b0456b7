package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/internal/core/service"
	"github.com/callanalyzer/dashboard/internal/infrastructure/backend"
	"github.com/callanalyzer/dashboard/internal/infrastructure/fixture"
	"github.com/callanalyzer/dashboard/internal/infrastructure/http/handlers"
	"github.com/callanalyzer/dashboard/internal/infrastructure/storage"
)

var csrfField = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type testSource interface {
	ports.DataSource
	handlers.Pinger
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	source, err := fixture.NewDataSource(fixture.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return newTestServerWith(t, source, storage.NewMemory(time.Hour))
}

func testDeps(source testSource, store *storage.Memory) Deps {
	return Deps{
		Sessions:       service.NewSessionService(source, store, zerolog.Nop()),
		Source:         source,
		Session:        middleware.SessionConfig{Secret: []byte("test-secret"), TTL: time.Hour, Logger: zerolog.Nop()},
		DemoEnabled:    true,
		MaxUploadBytes: 1 << 20,
		Checks:         []handlers.Check{{Name: "storage", Pinger: store}, {Name: "backend", Pinger: source}},
		Registerer:     prometheus.NewRegistry(),
		Logger:         zerolog.Nop(),
	}
}

func newTestServerWith(t *testing.T, source testSource, store *storage.Memory) (*httptest.Server, *http.Client) {
	t.Helper()
	e, err := NewRouter(testDeps(source, store))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func get(t *testing.T, client *http.Client, u string) (*http.Response, string) {
	t.Helper()
	res, err := client.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res, string(body)
}

func TestRouter_AnonymousIsSentToLogin(t *testing.T) {
	srv, client := newTestServer(t)

	res, _ := get(t, client, srv.URL+"/dashboard")
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d %s", res.StatusCode, res.Header.Get("Location"))
	}

	res, _ = get(t, client, srv.URL+"/")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("landing should be public, got %d", res.StatusCode)
	}
}

func TestRouter_HealthAndSessionBypassGuard(t *testing.T) {
	srv, client := newTestServer(t)

	res, _ := get(t, client, srv.URL+"/health/ready")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", res.StatusCode)
	}

	res, body := get(t, client, srv.URL+"/session")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var s struct {
		Authenticated bool   `json:"authenticated"`
		State         string `json:"state"`
	}
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Authenticated || s.State != "anonymous" {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestRouter_LoginFlow(t *testing.T) {
	srv, client := newTestServer(t)

	res, body := get(t, client, srv.URL+"/login")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login page: %d", res.StatusCode)
	}
	m := csrfField.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("login page has no csrf token")
	}

	form := url.Values{"username": {fixture.DemoUsername}, "password": {fixture.DemoPassword}, "_csrf": {m[1]}}
	res, err := client.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %s", res.StatusCode, res.Header.Get("Location"))
	}

	res, body = get(t, client, srv.URL+"/dashboard")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "Recent calls") {
		t.Fatalf("dashboard not rendered: %d", res.StatusCode)
	}

	res, _ = get(t, client, srv.URL+"/login")
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/dashboard" {
		t.Fatalf("authenticated login visit should go to dashboard, got %d", res.StatusCode)
	}

	res, _ = get(t, client, srv.URL+"/call-recordings/404404")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 page, got %d", res.StatusCode)
	}
}

func TestRouter_PostWithoutCSRFIsRejected(t *testing.T) {
	srv, client := newTestServer(t)

	get(t, client, srv.URL+"/login")
	res, err := client.PostForm(srv.URL+"/login", url.Values{"username": {"demo"}, "password": {"password"}})
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest && res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected csrf rejection, got %d", res.StatusCode)
	}
}

func TestRouter_CanBeBuiltTwice(t *testing.T) {
	source, err := fixture.NewDataSource(fixture.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := NewRouter(testDeps(source, storage.NewMemory(time.Hour))); err != nil {
			t.Fatalf("NewRouter #%d: %v", i+1, err)
		}
	}

	reg := prometheus.NewRegistry()
	d := testDeps(source, storage.NewMemory(time.Hour))
	d.Registerer = reg
	if _, err := NewRouter(d); err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	if _, err := NewRouter(d); err == nil {
		t.Fatal("expected duplicate registration on one registry to be reported")
	}
}

func TestRouter_MetricsServedFromInjectedRegistry(t *testing.T) {
	source, err := fixture.NewDataSource(fixture.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	reg := prometheus.NewRegistry()
	d := testDeps(source, storage.NewMemory(time.Hour))
	d.Registerer, d.Gatherer = reg, reg
	e, err := NewRouter(d)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	get(t, srv.Client(), srv.URL+"/")
	res, body := get(t, srv.Client(), srv.URL+"/metrics")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "dashboard_requests_total") {
		t.Fatalf("expected http metrics on /metrics, got %d", res.StatusCode)
	}
}

// forbiddingBackend issues a token and a profile, and answers 403 everywhere else.
func forbiddingBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/token-auth/":
			_, _ = io.WriteString(w, `{"token":"tok-1"}`)
		case "/api/agents/me/":
			_, _ = io.WriteString(w, `{"id":1,"username":"demo","first_name":"John","last_name":"Smith"}`)
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"detail":"You do not have permission to perform this action."}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_BackendForbiddenKeepsSession(t *testing.T) {
	upstream := forbiddingBackend(t)
	store := storage.NewMemory(time.Hour)
	source := backend.NewDataSource(backend.NewClient(backend.Options{
		BaseURL: upstream.URL,
		Tokens:  backend.StorageTokens{Storage: store},
		Logger:  zerolog.Nop(),
	}))
	srv, client := newTestServerWith(t, source, store)

	res, err := client.Post(srv.URL+"/session", "application/json", strings.NewReader(`{"username":"demo","password":"password"}`))
	if err != nil {
		t.Fatalf("POST /session: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", res.StatusCode)
	}

	res, body := get(t, client, srv.URL+"/agents")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "You do not have permission") {
		t.Fatalf("expected inline permission error, got %d %s", res.StatusCode, res.Header.Get("Location"))
	}

	res, body = get(t, client, srv.URL+"/dashboard")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "could not be loaded") {
		t.Fatalf("expected dashboard with notice, got %d %s", res.StatusCode, res.Header.Get("Location"))
	}

	res, _ = get(t, client, srv.URL+"/agents/7")
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 page, got %d %s", res.StatusCode, res.Header.Get("Location"))
	}

	res, body = get(t, client, srv.URL+"/session")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `"authenticated":true`) {
		t.Fatalf("session was dropped after a 403: %s", body)
	}
}
