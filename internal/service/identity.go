// Package service holds the business rules of the board service.
//
// Services sit between the HTTP handlers and the repositories:
//
//	handler (HTTP) → service (rules) → repository (DB)
//
// They never touch http.Request or ResponseWriter, which keeps them testable
// with in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/metrics"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
	"github.com/sakif/boardsvc/internal/session"
)

// IdentityResolver turns the provider authentication held in a session into a
// local model.User, creating the user on first sight.
//
// FLOW:
//
//	session has User?            → return it, nothing else is read
//	session has OAuth2 auth?     no → return session.User (possibly nil)
//	decode provider profile      → name, email, provider id
//	users.FindByEmail            → found: reuse it, not found: users.Save
//	grant provider role          → swap auth for a PasswordAuthentication
//	cache user in the session    → the caller persists the session
//
// Email is the natural key. Two first-time logins with the same email racing on
// different sessions can both insert; the user table has no unique index on
// email, so FindByEmail returns the oldest row from then on.
type IdentityResolver struct {
	users   repository.UserRepository
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewIdentityResolver wires the resolver. A nil recorder disables metrics.
func NewIdentityResolver(users repository.UserRepository, rec metrics.Recorder, logger *slog.Logger) *IdentityResolver {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &IdentityResolver{
		users:   users,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve returns the local user behind sess, or nil when the session carries
// no provider authentication. On success sess.User is set and, when the
// provider role was missing, sess.Auth is replaced by a PasswordAuthentication
// carrying that role.
func (r *IdentityResolver) Resolve(ctx context.Context, sess *session.Session) (*model.User, error) {
	if sess == nil {
		return nil, nil
	}
	if sess.User != nil {
		r.metrics.RecordIdentityResolution(providerLabel(sess), metrics.OutcomeCached)
		return sess.User, nil
	}

	oa, ok := sess.Auth.(*auth.OAuth2Authentication)
	if !ok {
		return sess.User, nil
	}

	profile, err := auth.DecodeProfile(oa.Provider, oa.Attributes)
	if err != nil {
		r.metrics.RecordIdentityResolution(oa.Provider, metrics.OutcomeError)
		return nil, fmt.Errorf("service/identity: decoding %q profile: %w", oa.Provider, err)
	}

	user, outcome, err := r.findOrCreate(ctx, profile)
	if err != nil {
		r.metrics.RecordIdentityResolution(oa.Provider, metrics.OutcomeError)
		return nil, err
	}

	role := roleFor(user, profile)
	if !auth.HasAuthority(oa, role) {
		sess.Auth = &auth.PasswordAuthentication{
			Principal:          oa.Attributes,
			Credentials:        auth.PlaceholderCredentials,
			GrantedAuthorities: []string{role},
		}
	}

	sess.User = user
	r.metrics.RecordIdentityResolution(oa.Provider, outcome)
	r.logger.InfoContext(ctx, "identity resolved",
		"user_id", user.ID,
		"provider", oa.Provider,
		"outcome", outcome,
	)
	return user, nil
}

// findOrCreate looks the profile up by email and inserts it when absent.
func (r *IdentityResolver) findOrCreate(ctx context.Context, p auth.Profile) (*model.User, string, error) {
	existing, err := r.users.FindByEmail(ctx, p.EmailAddress())
	if err == nil {
		return existing, metrics.OutcomeExisting, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, "", fmt.Errorf("service/identity: finding user by email: %w", err)
	}

	user := &model.User{
		Name:        p.DisplayName(),
		Email:       p.EmailAddress(),
		Principal:   p.PrincipalID(),
		SocialType:  p.SocialType(),
		CreatedDate: r.now(),
	}
	if err := r.users.Save(ctx, user); err != nil {
		return nil, "", fmt.Errorf("service/identity: saving new user: %w", err)
	}
	return user, metrics.OutcomeCreated, nil
}

// roleFor is the stored user's provider role. A local account that signs in
// through a provider has no SocialType and gets the role of that provider.
func roleFor(user *model.User, p auth.Profile) string {
	if user.SocialType != "" {
		return user.SocialType.RoleType()
	}
	return p.SocialType().RoleType()
}

func providerLabel(sess *session.Session) string {
	if sess.User != nil && sess.User.SocialType != "" {
		return sess.User.SocialType.String()
	}
	if oa, ok := sess.Auth.(*auth.OAuth2Authentication); ok {
		return oa.Provider
	}
	return ""
}
