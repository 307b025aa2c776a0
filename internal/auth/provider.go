package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sakif/boardsvc/internal/model"
)

// Provider endpoints that golang.org/x/oauth2 does not ship.
const (
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	KakaoAuthURL     = "https://kauth.kakao.com/oauth/authorize"
	KakaoTokenURL    = "https://kauth.kakao.com/oauth/token"
	KakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoEndpoint sends client credentials in the form body, which Kakao requires.
var KakaoEndpoint = oauth2.Endpoint{
	AuthURL:   KakaoAuthURL,
	TokenURL:  KakaoTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// ProviderConfig is the per-registration client configuration.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURL must match the callback registered with the provider,
	// e.g. "http://localhost:8080/login/oauth2/code/google".
	RedirectURL string
	Scopes      []string
}

// Provider runs the OAuth 2.0 Authorization Code flow against one identity
// provider and fetches the user's profile.
//
// FLOW:
//  1. AuthURL sends the browser to the provider with a random state.
//  2. The provider redirects back with ?code=...&state=...
//  3. Exchange trades the code for an access token (server to server) and
//     calls the userinfo endpoint with it.
type Provider struct {
	name        model.SocialType
	config      *oauth2.Config
	userInfoURL string
}

// NewProvider builds a Provider for any OAuth2 endpoint.
func NewProvider(name model.SocialType, cfg ProviderConfig, endpoint oauth2.Endpoint, userInfoURL string) *Provider {
	return &Provider{
		name: name,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

// NewGoogleProvider requests the "profile" and "email" scopes unless cfg overrides them.
func NewGoogleProvider(cfg ProviderConfig) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"profile", "email"}
	}
	return NewProvider(model.SocialGoogle, cfg, google.Endpoint, GoogleUserInfoURL)
}

// NewKakaoProvider builds the Kakao provider. Kakao apps may be configured
// without a client secret, in which case ClientSecret is left empty.
func NewKakaoProvider(cfg ProviderConfig) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"profile_nickname", "account_email"}
	}
	return NewProvider(model.SocialKakao, cfg, KakaoEndpoint, KakaoUserInfoURL)
}

// Name is the registration id used in URLs ("google", "kakao").
func (p *Provider) Name() model.SocialType { return p.name }

// Scopes are the scopes requested at authorization time.
func (p *Provider) Scopes() []string { return p.config.Scopes }

// AuthURL returns the provider's consent page URL carrying state.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's attribute map.
//
// The map is the userinfo JSON document decoded with json.Number for numbers,
// so a Kakao id such as 1234567890123 is never rounded or rendered as 1.23e+12.
//
// To point the flow at a test server, put an *http.Client in ctx under
// oauth2.HTTPClient; it is used for both the token and userinfo calls.
func (p *Provider) Exchange(ctx context.Context, code string) (map[string]any, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging %s code: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building %s userinfo request: %w", p.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling %s userinfo: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: reading %s userinfo: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: %s userinfo returned status %d", p.name, resp.StatusCode)
	}

	var attrs map[string]any
	if err := decodeJSON(body, &attrs); err != nil {
		return nil, fmt.Errorf("auth: decoding %s userinfo: %w", p.name, err)
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("auth: %s userinfo was empty", p.name)
	}
	return attrs, nil
}
