// Package session keeps one server-side record per browser.
//
// The browser only holds a signed cookie naming its session id; everything
// else (the resolved user, the current Authentication, in-flight OAuth state)
// lives in a Store keyed by that id. Handlers get the session for the current
// request with FromContext and persist changes with Manager.Save.
package session

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/model"
)

// Session is the per-browser state.
type Session struct {
	ID string

	// User is the cached local user, set once identity resolution succeeds.
	User *model.User

	// Auth is nil until the browser logs in.
	Auth auth.Authentication

	// OAuthState and OAuthProvider hold the pending authorization request
	// between the redirect to a provider and its callback.
	OAuthState    string
	OAuthProvider string

	CreatedAt time.Time

	isNew bool
}

// New returns an empty session with a fresh id.
func New() *Session {
	return &Session{
		ID:        xid.New().String(),
		CreatedAt: time.Now(),
		isNew:     true,
	}
}

// IsNew reports whether the session was created for this request rather than loaded.
func (s *Session) IsNew() bool { return s.isNew }

// IsAuthenticated reports whether any Authentication is attached.
func (s *Session) IsAuthenticated() bool { return s.Auth != nil }

// HasAuthority reports whether the current Authentication grants authority.
func (s *Session) HasAuthority(authority string) bool {
	return auth.HasAuthority(s.Auth, authority)
}

// Clear drops the user, authentication and pending OAuth state but keeps the id.
func (s *Session) Clear() {
	s.User = nil
	s.Auth = nil
	s.OAuthState = ""
	s.OAuthProvider = ""
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by Manager.Load, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
