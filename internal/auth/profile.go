package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/boardsvc/internal/model"
)

var (
	// ErrUnsupportedProvider means the registration id has no profile decoder.
	ErrUnsupportedProvider = errors.New("auth: unsupported provider")

	// ErrIncompleteProfile means the provider did not return an email,
	// which is the key a social identity is matched on.
	ErrIncompleteProfile = errors.New("auth: provider profile has no email")
)

// Profile is a provider userinfo document decoded into explicit fields.
// The concrete type is either *GoogleProfile or *KakaoProfile.
type Profile interface {
	SocialType() model.SocialType
	DisplayName() string
	EmailAddress() string
	// PrincipalID is the provider's own id for the user.
	PrincipalID() string

	sealed()
}

// GoogleProfile is Google's v2 userinfo response. All fields are top level:
//
//	{"id":"1078...","email":"a@gmail.com","name":"Alice", ...}
type GoogleProfile struct {
	ID    string
	Name  string
	Email string
}

func (p *GoogleProfile) SocialType() model.SocialType { return model.SocialGoogle }
func (p *GoogleProfile) DisplayName() string          { return p.Name }
func (p *GoogleProfile) EmailAddress() string         { return p.Email }
func (p *GoogleProfile) PrincipalID() string          { return p.ID }
func (p *GoogleProfile) sealed()                      {}

// KakaoProfile is Kakao's user/me response. The display name is nested and the
// email lives under a Kakao-specific key:
//
//	{"id":12345,"kaccount_email":"a@kakao.com","properties":{"nickname":"앨리스"}}
//
// Newer accounts report the email as kakao_account.email instead; that is
// used when kaccount_email is absent. Top-level "nickname" and "email" keys
// are never read.
type KakaoProfile struct {
	ID       string
	Nickname string
	Email    string
}

func (p *KakaoProfile) SocialType() model.SocialType { return model.SocialKakao }
func (p *KakaoProfile) DisplayName() string          { return p.Nickname }
func (p *KakaoProfile) EmailAddress() string         { return p.Email }
func (p *KakaoProfile) PrincipalID() string          { return p.ID }
func (p *KakaoProfile) sealed()                      {}

// DecodeProfile turns a provider's attribute map into a Profile.
// provider is the registration id and is matched case-insensitively.
func DecodeProfile(provider string, attrs map[string]any) (Profile, error) {
	socialType, ok := model.ParseSocialType(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	var p Profile
	switch socialType {
	case model.SocialGoogle:
		p = &GoogleProfile{
			ID:    AttributeString(attrs["id"]),
			Name:  AttributeString(attrs["name"]),
			Email: AttributeString(attrs["email"]),
		}
	case model.SocialKakao:
		p = decodeKakao(attrs)
	default:
		// Facebook is a known social type with no login wired to it.
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	if p.EmailAddress() == "" {
		return nil, fmt.Errorf("%w (provider=%s, id=%s)", ErrIncompleteProfile, socialType, p.PrincipalID())
	}
	return p, nil
}

func decodeKakao(attrs map[string]any) *KakaoProfile {
	p := &KakaoProfile{
		ID:    AttributeString(attrs["id"]),
		Email: AttributeString(attrs["kaccount_email"]),
	}
	if props, ok := attrs["properties"].(map[string]any); ok {
		p.Nickname = AttributeString(props["nickname"])
	}
	if p.Email == "" {
		if account, ok := attrs["kakao_account"].(map[string]any); ok {
			p.Email = AttributeString(account["email"])
		}
	}
	return p
}

// decodeJSON unmarshals b into v keeping numbers as json.Number.
func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
