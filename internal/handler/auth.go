package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/security"
	"github.com/sakif/boardsvc/internal/service"
	"github.com/sakif/boardsvc/internal/session"
)

// AuthHandler serves the login page and both login flows.
//
//	GET  /login                              → login page
//	POST /login                              → local username/password
//	GET  /oauth2/authorization/{provider}    → redirect to the provider
//	GET  /login/oauth2/code/{provider}       → provider callback
//	GET  /loginSuccess                       → resolve the local user
//	GET  /loginFailure                       → back to /login?error
//	GET  /logout                             → drop the session
//	GET  /api/me                             → current user as JSON
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	views    *Views
	users    userResolver
	logger   *slog.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	resolver *service.IdentityResolver,
	sessions *session.Manager,
	views *Views,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		sessions: sessions,
		views:    views,
		users:    userResolver{resolver: resolver, sessions: sessions},
		logger:   logger,
	}
}

// HandleLoginPage renders the login form and the enabled provider links.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.views.render(w, r, http.StatusOK, viewLogin, viewData{
		Title:     "로그인",
		Error:     q.Has("error"),
		LoggedOut: q.Has("logout"),
		Providers: h.auth.Providers(),
	})
}

// HandleFormLogin checks username and password against the local account.
// The session id is renewed on success.
func (h *AuthHandler) HandleFormLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, security.LoginURL+"?error", http.StatusSeeOther)
		return
	}

	sess := currentSession(r)
	form := service.LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if _, err := h.auth.Login(r.Context(), sess, form); err != nil {
		if errors.Is(err, service.ErrBadCredentials) || errors.Is(err, apperror.ErrValidation) {
			http.Redirect(w, r, security.LoginURL+"?error", http.StatusSeeOther)
			return
		}
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if !h.persist(w, r, sess, true) {
		return
	}
	http.Redirect(w, r, "/board/list", http.StatusSeeOther)
}

// HandleAuthorize starts the OAuth round trip.
//
// The state value is stored in the server-side session, so the callback can
// prove it answers a request this browser started.
func (h *AuthHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	authURL, err := h.auth.BeginOAuth(sess, chi.URLParam(r, "provider"))
	if errors.Is(err, service.ErrUnknownProvider) {
		h.views.renderError(w, r, http.StatusNotFound, nil)
		return
	}
	if err != nil {
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if !h.persist(w, r, sess, false) {
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback completes the OAuth round trip and stores the provider's
// authentication in the session. The local user is resolved by /loginSuccess.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		h.logger.InfoContext(r.Context(), "provider denied authorization",
			slog.String("provider", provider),
			slog.String("error", errParam),
		)
		sess.OAuthState, sess.OAuthProvider = "", ""
		if !h.persist(w, r, sess, false) {
			return
		}
		http.Redirect(w, r, security.LoginFailureURL, http.StatusFound)
		return
	}

	err := h.auth.CompleteOAuth(r.Context(), sess, provider, q.Get("state"), q.Get("code"))
	if errors.Is(err, service.ErrUnknownProvider) {
		h.views.renderError(w, r, http.StatusNotFound, nil)
		return
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "oauth callback failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		if !h.persist(w, r, sess, false) {
			return
		}
		http.Redirect(w, r, security.LoginFailureURL, http.StatusFound)
		return
	}

	if !h.persist(w, r, sess, true) {
		return
	}
	http.Redirect(w, r, security.LoginSuccessURL, http.StatusFound)
}

// HandleLoginSuccess resolves (and on first login creates) the local user.
func (h *AuthHandler) HandleLoginSuccess(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if _, err := h.users.currentUser(w, r, sess); err != nil {
		h.logger.WarnContext(r.Context(), "identity resolution failed", slog.String("error", err.Error()))
		http.Redirect(w, r, security.LoginFailureURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/board/list", http.StatusFound)
}

func (h *AuthHandler) HandleLoginFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, security.LoginURL+"?error", http.StatusFound)
}

// HandleLogout deletes the session and expires its cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	h.auth.Logout(r.Context(), sess)
	if err := h.sessions.Destroy(w, r, sess); err != nil {
		// The cookie is already expired; a leftover record just times out.
		h.logger.WarnContext(r.Context(), "deleting session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, security.LoginURL+"?logout", http.StatusFound)
}

// HandleMe returns the current user, resolving a fresh social login if needed.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	user, err := h.users.currentUser(w, r, sess)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperror.Unauthorized("no user in session"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// persist saves sess, renewing its id first when renew is set.
// On failure it writes a 500 page and returns false.
func (h *AuthHandler) persist(w http.ResponseWriter, r *http.Request, sess *session.Session, renew bool) bool {
	if renew {
		if err := h.sessions.Renew(r, sess); err != nil {
			h.views.renderError(w, r, http.StatusInternalServerError, err)
			return false
		}
	}
	if err := h.sessions.Save(w, r, sess); err != nil {
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return false
	}
	return true
}
