package domain

import "context"

// SessionState is the lifecycle state of a browser session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// Storage keys owned by the session service. No other component writes them.
const (
	StorageKeyToken = "auth_token"
	StorageKeyUser  = "auth_user"
)

// Page paths used for navigation decisions.
const (
	PathLanding   = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// Session holds the token/user pair of one browser. User is non-nil iff Token is set.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) State() SessionState {
	if s.Authenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

type sessionIDKey struct{}

// WithSessionID returns a context carrying the browser session id.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sid)
}

// SessionID extracts the browser session id, or "" if none was attached.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey{}).(string)
	return sid
}
