package security

import (
	"log/slog"
	"net/http"

	"github.com/sakif/boardsvc/internal/session"
)

// Access is what a Rule demands of the caller.
type Access int

const (
	// PermitAll lets anyone through, authenticated or not.
	PermitAll Access = iota
	// Authenticated requires any Authentication in the session.
	Authenticated
	// HasAuthority requires Authentication granting Rule.Authority.
	HasAuthority
)

// Rule applies Access to every path matching one of Patterns.
type Rule struct {
	Patterns  []string
	Access    Access
	Authority string
}

func (r Rule) matches(p string) bool {
	for _, pattern := range r.Patterns {
		if Match(pattern, p) {
			return true
		}
	}
	return false
}

// Well-known URLs of the login flow.
const (
	LoginURL        = "/login"
	LoginSuccessURL = "/loginSuccess"
	LoginFailureURL = "/loginFailure"
	LogoutURL       = "/logout"
)

// Policy is an ordered rule list. Paths no rule matches require authentication.
type Policy struct {
	rules      []Rule
	entryPoint string
	logger     *slog.Logger

	// apiPatterns are answered with 401 instead of a login redirect.
	apiPatterns []string
}

// NewPolicy builds a Policy that redirects unauthenticated callers to entryPoint.
func NewPolicy(entryPoint string, logger *slog.Logger, rules ...Rule) *Policy {
	return &Policy{rules: rules, entryPoint: entryPoint, logger: logger}
}

// DefaultPolicy is the board service's access policy:
//
//	/, /oauth2/**, /login/**, static assets, /console/**, /metrics, /healthz  anyone
//	/kakao                                                                  ROLE_KAKAO
//	everything else                                                         logged in
//
// Anonymous calls to /api/** get 401 rather than a redirect.
func DefaultPolicy(logger *slog.Logger) *Policy {
	p := NewPolicy(LoginURL, logger,
		Rule{
			Patterns: []string{
				"/", "/oauth2/**", "/login/**",
				"/css/**", "/images/**", "/js/**", "/console/**",
				"/metrics", "/healthz",
			},
			Access: PermitAll,
		},
		Rule{Patterns: []string{"/kakao"}, Access: HasAuthority, Authority: "ROLE_KAKAO"},
	)
	p.apiPatterns = []string{"/api/**"}
	return p
}

// Decision is the outcome of evaluating a request.
type Decision int

const (
	Allow Decision = iota
	// Challenge means the caller is anonymous and must log in.
	Challenge
	// Deny means the caller is logged in but lacks the required authority.
	Deny
)

// Decide evaluates the rules for urlPath against sess. A nil sess is anonymous.
func (p *Policy) Decide(urlPath string, sess *session.Session) Decision {
	authenticated := sess != nil && sess.IsAuthenticated()

	for _, rule := range p.rules {
		if !rule.matches(urlPath) {
			continue
		}
		switch rule.Access {
		case PermitAll:
			return Allow
		case HasAuthority:
			if !authenticated {
				return Challenge
			}
			if !sess.HasAuthority(rule.Authority) {
				return Deny
			}
			return Allow
		default:
			if !authenticated {
				return Challenge
			}
			return Allow
		}
	}

	if !authenticated {
		return Challenge
	}
	return Allow
}

// Middleware enforces the policy. Anonymous callers are redirected to the
// entry point with 302; authenticated callers without the authority get 403.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := session.FromContext(r.Context())

		switch p.Decide(r.URL.Path, sess) {
		case Challenge:
			if p.isAPI(r.URL.Path) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"login required"}`))
				return
			}
			p.logger.Debug("redirecting anonymous request to login",
				slog.String("path", r.URL.Path),
			)
			http.Redirect(w, r, p.entryPoint, http.StatusFound)
		case Deny:
			p.logger.Info("access denied",
				slog.String("path", r.URL.Path),
				slog.String("principal", sess.Auth.Name()),
			)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (p *Policy) isAPI(urlPath string) bool {
	for _, pattern := range p.apiPatterns {
		if Match(pattern, urlPath) {
			return true
		}
	}
	return false
}
