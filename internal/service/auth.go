package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/metrics"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
	"github.com/sakif/boardsvc/internal/session"
)

// Errors returned by AuthService. Handlers redirect all of them to the login
// failure page except ErrUnknownProvider, which is a 404.
var (
	ErrBadCredentials  = errors.New("service/auth: bad credentials")
	ErrUnknownProvider = errors.New("service/auth: unknown provider")
	ErrInvalidState    = errors.New("service/auth: oauth state mismatch")
)

// OAuthProvider is the part of *auth.Provider the login flow needs.
type OAuthProvider interface {
	Name() model.SocialType
	Scopes() []string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (map[string]any, error)
}

var _ OAuthProvider = (*auth.Provider)(nil)

// LoginForm is the body of POST /login.
type LoginForm struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required,max=72"`
}

// AuthService handles both ways into a session: the local username/password
// form and the provider redirect round trip.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → local account lookup
//   - passwords  *auth.PasswordService      → bcrypt verification
//   - providers  []OAuthProvider            → registered social logins
//   - metrics    metrics.Recorder           → login counters
//   - logger     *slog.Logger
//
// AuthService only mutates the *session.Session it is given. Persisting the
// session and setting the cookie is the handler's job.
type AuthService struct {
	users        repository.UserRepository
	passwords    *auth.PasswordService
	providers    map[model.SocialType]OAuthProvider
	metrics      metrics.Recorder
	logger       *slog.Logger
	validate     *validator.Validate
	oauthTimeout time.Duration
}

// NewAuthService registers providers by name; a later provider with the same
// name replaces an earlier one.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	providers []OAuthProvider,
	rec metrics.Recorder,
	logger *slog.Logger,
) *AuthService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	byName := make(map[model.SocialType]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthService{
		users:        users,
		passwords:    passwords,
		providers:    byName,
		metrics:      rec,
		logger:       logger,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		oauthTimeout: 15 * time.Second,
	}
}

// SetOAuthTimeout bounds the code exchange plus the userinfo request.
func (s *AuthService) SetOAuthTimeout(d time.Duration) {
	if d > 0 {
		s.oauthTimeout = d
	}
}

// Providers lists the registered provider names for the login page.
func (s *AuthService) Providers() []model.SocialType {
	names := make([]model.SocialType, 0, len(s.providers))
	// Fixed display order.
	for _, n := range []model.SocialType{model.SocialGoogle, model.SocialKakao, model.SocialFacebook} {
		if _, ok := s.providers[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Login checks a local account's password and, on success, installs a
// PasswordAuthentication with ROLE_USER and the user in sess.
//
// Unknown users, social accounts without a password and wrong passwords all
// return ErrBadCredentials so the response does not reveal which one it was.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, form LoginForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	if err := s.validate.Struct(form); err != nil {
		s.metrics.RecordLogin("form", false)
		return nil, apperror.ValidationFailed("username", "username and password are required")
	}

	user, err := s.users.FindByName(ctx, form.Username)
	if err != nil {
		s.metrics.RecordLogin("form", false)
		if apperror.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("service/auth: finding user %q: %w", form.Username, err)
	}

	if err := s.passwords.Verify(user.Password, form.Password); err != nil {
		s.metrics.RecordLogin("form", false)
		s.logger.InfoContext(ctx, "form login rejected", "username", form.Username)
		return nil, ErrBadCredentials
	}

	sess.Auth = &auth.PasswordAuthentication{
		Principal:          user.Name,
		GrantedAuthorities: []string{auth.RoleUser},
	}
	sess.User = user
	s.metrics.RecordLogin("form", true)
	s.logger.InfoContext(ctx, "form login", "user_id", user.ID)
	return user, nil
}

// BeginOAuth records a fresh state value in sess and returns the provider's
// authorization URL.
func (s *AuthService) BeginOAuth(sess *session.Session, provider string) (string, error) {
	p, err := s.provider(provider)
	if err != nil {
		return "", err
	}
	state := xid.New().String()
	sess.OAuthState = state
	sess.OAuthProvider = p.Name().String()
	return p.AuthURL(state), nil
}

// CompleteOAuth verifies the callback against the pending request in sess,
// exchanges the code and installs a fresh OAuth2Authentication.
//
// The cached user is dropped so the next identity resolution reads the new
// provider profile.
func (s *AuthService) CompleteOAuth(ctx context.Context, sess *session.Session, provider, state, code string) error {
	p, err := s.provider(provider)
	if err != nil {
		return err
	}

	expected := sess.OAuthState
	pending := sess.OAuthProvider
	sess.OAuthState, sess.OAuthProvider = "", ""
	if expected == "" || state != expected || pending != p.Name().String() {
		s.metrics.RecordLogin(provider, false)
		return ErrInvalidState
	}
	if code == "" {
		s.metrics.RecordLogin(provider, false)
		return fmt.Errorf("service/auth: %s callback without code", provider)
	}

	ctx, cancel := context.WithTimeout(ctx, s.oauthTimeout)
	defer cancel()

	attrs, err := p.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordLogin(provider, false)
		return fmt.Errorf("service/auth: %s exchange: %w", provider, err)
	}

	sess.Auth = auth.NewOAuth2Authentication(p.Name().String(), attrs, p.Scopes())
	sess.User = nil
	s.metrics.RecordLogin(provider, true)
	s.logger.InfoContext(ctx, "oauth login", "provider", provider, "principal", sess.Auth.Name())
	return nil
}

// Logout clears everything the session knows about the caller.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) {
	if sess.IsAuthenticated() {
		s.metrics.RecordLogout()
		s.logger.InfoContext(ctx, "logout", "principal", sess.Auth.Name())
	}
	sess.Clear()
}

func (s *AuthService) provider(name string) (OAuthProvider, error) {
	t, ok := model.ParseSocialType(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	p, ok := s.providers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}
