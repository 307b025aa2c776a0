package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/boardsvc/internal/auth"
)

// Defaults for Config fields left empty.
const (
	DefaultCookieName = "BOARDSESSION"
	DefaultTTL        = 30 * time.Minute
)

// Config controls the session cookie.
type Config struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie HTTPS-only; set it when the service is served over TLS.
	Secure bool
}

// Manager connects the cookie, the Store and the request context.
//
// COOKIE FORMAT:
// The cookie value is a JWT signed by auth.TokenService whose subject is the
// session id. A cookie that fails verification (tampered, expired, signed
// with another secret) is treated exactly like a missing cookie: the request
// gets a brand-new empty session.
//
// EXPIRY:
// Store record and cookie expire together, TTL after they were last written.
// Load slides both forward once less than half the TTL is left, so the TTL
// acts as an idle timeout.
type Manager struct {
	store  Store
	tokens *auth.TokenService
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewManager fills empty Config fields with the defaults.
func NewManager(store Store, tokens *auth.TokenService, cfg Config, logger *slog.Logger) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Manager{store: store, tokens: tokens, cfg: cfg, logger: logger, now: time.Now}
}

// CookieName is the configured cookie name.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// Load is middleware that attaches the caller's session to the request context.
// It never fails the request: any problem reading the session yields a new one.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, expiresAt := m.load(r)
		if !sess.IsNew() && expiresAt.Sub(m.now()) < m.cfg.TTL/2 {
			m.refresh(w, r, sess)
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

// load returns the stored session and the expiry of the cookie that named it.
func (m *Manager) load(r *http.Request) (*Session, time.Time) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return New(), time.Time{}
	}

	id, expiresAt, err := m.tokens.Parse(cookie.Value)
	if err != nil {
		m.logger.Debug("discarding session cookie", slog.String("error", err.Error()))
		return New(), time.Time{}
	}

	data, err := m.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("session store read failed",
				slog.String("session", id),
				slog.String("error", err.Error()),
			)
		}
		return New(), time.Time{}
	}

	sess, err := Decode(data)
	if err != nil {
		m.logger.Warn("discarding undecodable session",
			slog.String("session", id),
			slog.String("error", err.Error()),
		)
		return New(), time.Time{}
	}
	return sess, expiresAt
}

// refresh extends the store record and reissues the cookie for another TTL.
// On failure the request keeps its session and the old expiry stands.
func (m *Manager) refresh(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := m.store.Touch(r.Context(), sess.ID, m.cfg.TTL); err != nil {
		m.logger.Warn("extending session",
			slog.String("session", sess.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := m.setCookie(w, sess.ID); err != nil {
		m.logger.Error("reissuing session cookie",
			slog.String("session", sess.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Save writes sess to the store and (re)issues the cookie, sliding its expiry.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	if err := m.store.Set(r.Context(), sess.ID, data, m.cfg.TTL); err != nil {
		return fmt.Errorf("session: saving %s: %w", sess.ID, err)
	}
	if err := m.setCookie(w, sess.ID); err != nil {
		return err
	}
	sess.isNew = false
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) error {
	token, err := m.tokens.Generate(id, m.cfg.TTL)
	if err != nil {
		return fmt.Errorf("session: signing cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves sess to a new id and drops the old store entry.
// Call it when the privilege level changes (login) so a session id planted
// before login cannot be reused afterwards. The caller must Save afterwards.
func (m *Manager) Renew(r *http.Request, sess *Session) error {
	old := sess.ID
	sess.ID = xid.New().String()
	if err := m.store.Delete(r.Context(), old); err != nil {
		return fmt.Errorf("session: renewing %s: %w", old, err)
	}
	return nil
}

// Destroy deletes sess from the store, clears it and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, sess *Session) error {
	sess.Clear()
	err := m.store.Delete(r.Context(), sess.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if err != nil {
		return fmt.Errorf("session: destroying %s: %w", sess.ID, err)
	}
	return nil
}
