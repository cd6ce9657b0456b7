package ports

import (
	"context"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// LoginResult reports the outcome of a login attempt. Login never returns an error:
// Message is safe to show to the user and Redirect is set only on success.
type LoginResult struct {
	OK       bool
	Message  string
	Redirect string
	User     *domain.User
}

// SessionService owns the token/user pair of every browser session.
type SessionService interface {
	Login(ctx context.Context, sid, username, password string) LoginResult
	// Logout clears the session and returns the page to navigate to.
	Logout(ctx context.Context, sid string) string
	Hydrate(ctx context.Context, sid string) (domain.Session, error)
	// Guard decides whether path may be shown for session; redirect is set when not.
	Guard(session domain.Session, path string) (redirect string, ok bool)
	// State reports authenticating while a login for sid is in flight.
	State(sid string, session domain.Session) domain.SessionState
}

// RevalidationQueue accepts asynchronous token re-validation jobs.
type RevalidationQueue interface {
	Enqueue(job RevalidationJob) bool
}

// RevalidationJob asks for the token stored under SessionID to be checked.
type RevalidationJob struct {
	SessionID string
	Token     string
}
