package handler

import (
	"fmt"
	"net/http"

	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/service"
	"github.com/sakif/boardsvc/internal/session"
)

// currentSession returns the session Manager.Load attached to r.
// Without the middleware every request gets a throwaway anonymous session.
func currentSession(r *http.Request) *session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return session.New()
}

// userResolver resolves the current social user and persists the session
// when resolution changed it.
type userResolver struct {
	resolver *service.IdentityResolver
	sessions *session.Manager
}

func (u userResolver) currentUser(w http.ResponseWriter, r *http.Request, sess *session.Session) (*model.User, error) {
	cached := sess.User != nil
	user, err := u.resolver.Resolve(r.Context(), sess)
	if err != nil {
		return nil, err
	}
	if !cached && user != nil {
		if err := u.sessions.Save(w, r, sess); err != nil {
			return nil, fmt.Errorf("handler: saving session: %w", err)
		}
	}
	return user, nil
}
