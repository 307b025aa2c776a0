// Package auth holds everything that answers "who is this request?":
// the Authentication principals kept in a session, provider profile decoding,
// the OAuth2 provider clients, the signed session cookie and bcrypt hashing.
//
// AUTHENTICATION vs USER
// An Authentication is what the security layer knows about the caller: which
// mechanism proved the identity and which authorities it was granted. A
// model.User is the local database row. The identity resolver in
// internal/service turns the former into the latter.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Well-known authorities.
const (
	RoleUser = "ROLE_USER"

	// PlaceholderCredentials replaces the provider token once a social
	// authentication has been swapped for a PasswordAuthentication.
	PlaceholderCredentials = "N/A"
)

// Kind identifies the concrete Authentication type inside a serialized session.
type Kind string

const (
	KindOAuth2   Kind = "oauth2"
	KindPassword Kind = "password"
)

// Authentication is the proven identity of the current caller.
//
// It is an interface so the session can hold either the raw result of an
// OAuth2 login or the password-style authentication the resolver installs
// afterwards. Use a type switch (or errors.As-style assertion) to tell them apart:
//
//	if oa, ok := sess.Auth.(*auth.OAuth2Authentication); ok { ... }
type Authentication interface {
	Kind() Kind
	// Name is the principal's identifier, e.g. the provider's user id or a username.
	Name() string
	// Authorities are the granted roles and scopes, e.g. "ROLE_USER", "SCOPE_email".
	Authorities() []string
}

// HasAuthority reports whether a grants authority. A nil Authentication grants nothing.
func HasAuthority(a Authentication, authority string) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Authorities(), authority)
}

// OAuth2Authentication is stored right after a successful provider callback.
//
// Provider is the registration id ("google", "kakao"); Attributes is the raw
// userinfo document exactly as the provider returned it.
type OAuth2Authentication struct {
	Provider           string         `json:"provider"`
	Attributes         map[string]any `json:"attributes"`
	GrantedAuthorities []string       `json:"authorities"`
}

// NewOAuth2Authentication grants ROLE_USER plus SCOPE_<s> for each requested scope.
// The provider role (ROLE_GOOGLE, ROLE_KAKAO) is not granted here; identity
// resolution adds it once a local user exists.
func NewOAuth2Authentication(provider string, attrs map[string]any, scopes []string) *OAuth2Authentication {
	authorities := make([]string, 0, len(scopes)+1)
	authorities = append(authorities, RoleUser)
	for _, s := range scopes {
		authorities = append(authorities, "SCOPE_"+s)
	}
	return &OAuth2Authentication{
		Provider:           provider,
		Attributes:         attrs,
		GrantedAuthorities: authorities,
	}
}

func (a *OAuth2Authentication) Kind() Kind            { return KindOAuth2 }
func (a *OAuth2Authentication) Authorities() []string { return a.GrantedAuthorities }

// Name is the provider's "id" attribute.
func (a *OAuth2Authentication) Name() string {
	return AttributeString(a.Attributes["id"])
}

// PasswordAuthentication covers local form logins and resolved social logins.
//
// For a form login Principal is the username. For a resolved social login it is
// the provider attribute map and Credentials is PlaceholderCredentials.
type PasswordAuthentication struct {
	Principal          any      `json:"principal"`
	Credentials        string   `json:"credentials"`
	GrantedAuthorities []string `json:"authorities"`
}

func (a *PasswordAuthentication) Kind() Kind            { return KindPassword }
func (a *PasswordAuthentication) Authorities() []string { return a.GrantedAuthorities }

func (a *PasswordAuthentication) Name() string {
	switch p := a.Principal.(type) {
	case string:
		return p
	case map[string]any:
		return AttributeString(p["id"])
	default:
		return AttributeString(p)
	}
}

// compile-time checks
var (
	_ Authentication = (*OAuth2Authentication)(nil)
	_ Authentication = (*PasswordAuthentication)(nil)
)

// envelope is the JSON form of an Authentication: {"kind":"oauth2","data":{...}}.
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ErrUnknownKind is returned when decoding an envelope with an unrecognised kind.
var ErrUnknownKind = errors.New("auth: unknown authentication kind")

// MarshalAuthentication encodes a into a kind-tagged envelope. A nil a encodes as JSON null.
func MarshalAuthentication(a Authentication) ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("auth: encoding %s authentication: %w", a.Kind(), err)
	}
	return json.Marshal(envelope{Kind: a.Kind(), Data: data})
}

// UnmarshalAuthentication is the inverse of MarshalAuthentication.
// Numbers inside attribute maps are kept as json.Number so ids survive intact.
func UnmarshalAuthentication(b []byte) (Authentication, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("auth: decoding authentication envelope: %w", err)
	}

	var a Authentication
	switch env.Kind {
	case KindOAuth2:
		a = &OAuth2Authentication{}
	case KindPassword:
		a = &PasswordAuthentication{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}

	if err := decodeJSON(env.Data, a); err != nil {
		return nil, fmt.Errorf("auth: decoding %s authentication: %w", env.Kind, err)
	}
	return a, nil
}

// AttributeString renders a decoded JSON attribute as a string.
// Numbers are printed without an exponent; nil becomes "".
func AttributeString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
