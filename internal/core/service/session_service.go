package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/pkg/metrics"
)

// bypassPrefixes are non-page routes the guard never redirects.
var bypassPrefixes = []string{"/static", "/health", "/metrics", "/swagger", "/session"}

const msgUnreachable = "Unable to reach the authentication server"

const (
	sidLocks = 64
	// A hydrated token is revalidated again once its entry ages out or is evicted.
	checkedCapacity = 10000
	checkedTTL      = time.Hour
)

// SessionService owns auth_token and auth_user for every browser session.
// It is safe for concurrent use; one instance serves the whole process.
type SessionService struct {
	source ports.DataSource
	store  ports.ClientStorage
	log    zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	queue    ports.RevalidationQueue

	// checked maps sid to the token last queued for revalidation.
	checked *expirable.LRU[string, string]
	// locks serialise storage writes per sid.
	locks [sidLocks]sync.Mutex
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(source ports.DataSource, store ports.ClientStorage, log zerolog.Logger) *SessionService {
	return &SessionService{
		source:   source,
		store:    store,
		log:      log,
		inflight: make(map[string]struct{}),
		checked:  expirable.NewLRU[string, string](checkedCapacity, nil, checkedTTL),
	}
}

// AttachQueue sets the queue that receives revalidation jobs on first hydration.
// Without a queue hydrated sessions are trusted as stored.
func (s *SessionService) AttachQueue(q ports.RevalidationQueue) {
	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
}

// Login exchanges credentials for a token, loads the profile and persists both.
// Nothing is written unless both steps succeed.
func (s *SessionService) Login(ctx context.Context, sid, username, password string) ports.LoginResult {
	log := s.log.With().Str("sid", sid).Str("username", username).Logger()

	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return ports.LoginResult{Message: "Username and password are required"}
	}
	if !s.begin(sid) {
		metrics.LoginsTotal.WithLabelValues("in_progress").Inc()
		return ports.LoginResult{Message: capitalize(domain.ErrLoginInProgress.Error())}
	}
	defer s.end(sid)
	log.Debug().Str("state", string(domain.StateAuthenticating)).Msg("login started")

	token, err := s.source.IssueToken(ctx, username, password)
	if err != nil {
		log.Info().Err(err).Msg("login rejected")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return ports.LoginResult{Message: loginMessage(err)}
	}

	profile, err := s.source.CurrentUser(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch failed after token issue")
		metrics.LoginsTotal.WithLabelValues("profile_failed").Inc()
		return ports.LoginResult{Message: loginMessage(err)}
	}
	user := profile.User

	unlock := s.lock(sid)
	err = s.persist(ctx, sid, token, &user)
	unlock()
	if err != nil {
		log.Error().Err(err).Msg("persist session")
		metrics.LoginsTotal.WithLabelValues("persist_failed").Inc()
		return ports.LoginResult{Message: "Could not save your session, please try again"}
	}
	s.checked.Add(sid, token)

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	log.Info().Int("user_id", user.ID).Str("state", string(domain.StateAuthenticated)).Msg("login succeeded")
	return ports.LoginResult{OK: true, Redirect: domain.PathDashboard, User: &user}
}

// Logout clears the session whatever its state and returns the login path.
func (s *SessionService) Logout(ctx context.Context, sid string) string {
	unlock := s.lock(sid)
	s.clear(ctx, sid)
	unlock()
	metrics.LogoutsTotal.WithLabelValues("user").Inc()
	s.log.Info().Str("sid", sid).Msg("logged out")
	return domain.PathLogin
}

// Hydrate restores the session from storage. A half-present pair is wiped.
// A token not yet checked by this process queues a background revalidation.
func (s *SessionService) Hydrate(ctx context.Context, sid string) (domain.Session, error) {
	session, ok, err := s.load(ctx, sid)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		// Re-read under the lock so a login finishing its writes is not wiped.
		unlock := s.lock(sid)
		session, ok, err = s.load(ctx, sid)
		if err == nil && !ok {
			s.log.Warn().Str("sid", sid).Msg("inconsistent session storage, clearing")
			s.clear(ctx, sid)
		}
		unlock()
		if err != nil || !ok {
			return domain.Session{}, err
		}
	}
	if !session.Authenticated() {
		return domain.Session{}, nil
	}

	s.mu.Lock()
	prev, seen := s.checked.Get(sid)
	fresh := !seen || prev != session.Token
	if fresh {
		s.checked.Add(sid, session.Token)
	}
	queue := s.queue
	s.mu.Unlock()

	if fresh && queue != nil {
		if !queue.Enqueue(ports.RevalidationJob{SessionID: sid, Token: session.Token}) {
			s.log.Warn().Str("sid", sid).Msg("revalidation queue full, session trusted as stored")
		}
	}

	return session, nil
}

// Revalidate checks token against the backend. A rejected token ends the session,
// but only while it is still the stored token; transport failures are ignored.
// An accepted token leaves storage untouched.
func (s *SessionService) Revalidate(ctx context.Context, sid, token string) {
	log := s.log.With().Str("sid", sid).Logger()

	_, err := s.source.CurrentUser(ctx, token)
	switch {
	case err == nil:
		log.Debug().Msg("stored token accepted")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotFound):
		unlock := s.lock(sid)
		defer unlock()
		if !s.stillCurrent(ctx, sid, token) {
			log.Debug().Msg("stale revalidation result discarded")
			return
		}
		s.clear(ctx, sid)
		metrics.LogoutsTotal.WithLabelValues("token_rejected").Inc()
		log.Info().Err(err).Msg("stored token rejected, session cleared")
	default:
		log.Warn().Err(err).Msg("token revalidation failed, keeping session")
	}
}

// Guard reports whether path may be rendered for session, or where to go instead.
func (s *SessionService) Guard(session domain.Session, p string) (string, bool) {
	p = path.Clean("/" + p)
	for _, prefix := range bypassPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return "", true
		}
	}

	if !session.Authenticated() {
		if isPublic(p) {
			return "", true
		}
		return domain.PathLogin, false
	}
	if p == domain.PathLogin {
		return domain.PathDashboard, false
	}
	return "", true
}

// State reports the lifecycle state of sid given its hydrated session.
func (s *SessionService) State(sid string, session domain.Session) domain.SessionState {
	s.mu.Lock()
	_, busy := s.inflight[sid]
	s.mu.Unlock()
	if busy {
		return domain.StateAuthenticating
	}
	return session.State()
}

func isPublic(p string) bool {
	return p == domain.PathLanding || p == domain.PathLogin || strings.HasPrefix(p, domain.PathLogin+"/")
}

func (s *SessionService) begin(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sid]; busy {
		return false
	}
	s.inflight[sid] = struct{}{}
	return true
}

func (s *SessionService) end(sid string) {
	s.mu.Lock()
	delete(s.inflight, sid)
	s.mu.Unlock()
}

func (s *SessionService) persist(ctx context.Context, sid, token string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, sid, domain.StorageKeyToken, token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, sid, domain.StorageKeyUser, string(raw)); err != nil {
		_ = s.store.Remove(ctx, sid, domain.StorageKeyToken)
		return err
	}
	return nil
}

// load reads the stored pair. ok is false when exactly one key is present or
// the user cannot be decoded; an empty session with ok means nothing is stored.
func (s *SessionService) load(ctx context.Context, sid string) (domain.Session, bool, error) {
	token, hasToken, err := s.store.Get(ctx, sid, domain.StorageKeyToken)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("hydrate token: %w", err)
	}
	rawUser, hasUser, err := s.store.Get(ctx, sid, domain.StorageKeyUser)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("hydrate user: %w", err)
	}
	if !hasToken && !hasUser {
		return domain.Session{}, true, nil
	}

	var user domain.User
	if !hasToken || !hasUser || token == "" || json.Unmarshal([]byte(rawUser), &user) != nil {
		return domain.Session{}, false, nil
	}
	return domain.Session{Token: token, User: &user}, true, nil
}

// clear removes both keys. Callers hold the sid lock.
func (s *SessionService) clear(ctx context.Context, sid string) {
	for _, key := range []string{domain.StorageKeyToken, domain.StorageKeyUser} {
		if err := s.store.Remove(ctx, sid, key); err != nil {
			s.log.Error().Err(err).Str("sid", sid).Str("key", key).Msg("remove session key")
		}
	}
	s.checked.Remove(sid)
}

func (s *SessionService) lock(sid string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sid))
	m := &s.locks[h.Sum32()%sidLocks]
	m.Lock()
	return m.Unlock
}

func (s *SessionService) stillCurrent(ctx context.Context, sid, token string) bool {
	current, ok, err := s.store.Get(ctx, sid, domain.StorageKeyToken)
	return err == nil && ok && current == token
}

// loginMessage turns a login failure into text for the login form. Backend
// responses carry their own message; anything else is a transport problem.
func loginMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return "Invalid credentials"
	}
	var status interface{ StatusCode() int }
	if errors.As(err, &status) {
		return err.Error()
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return "Invalid credentials"
	}
	return msgUnreachable
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
