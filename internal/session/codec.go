package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/model"
)

// record is the stored JSON form of a Session.
type record struct {
	ID            string          `json:"id"`
	User          *model.User     `json:"user,omitempty"`
	Auth          json.RawMessage `json:"auth,omitempty"`
	OAuthState    string          `json:"oauthState,omitempty"`
	OAuthProvider string          `json:"oauthProvider,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Encode serializes s. The Authentication is written as a kind-tagged
// envelope so its concrete type survives the round trip.
func Encode(s *Session) ([]byte, error) {
	a, err := auth.MarshalAuthentication(s.Auth)
	if err != nil {
		return nil, fmt.Errorf("session: encoding %s: %w", s.ID, err)
	}
	b, err := json.Marshal(record{
		ID:            s.ID,
		User:          s.User,
		Auth:          a,
		OAuthState:    s.OAuthState,
		OAuthProvider: s.OAuthProvider,
		CreatedAt:     s.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("session: encoding %s: %w", s.ID, err)
	}
	return b, nil
}

// Decode is the inverse of Encode. The returned session is not new.
func Decode(b []byte) (*Session, error) {
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("session: decoding: %w", err)
	}
	a, err := auth.UnmarshalAuthentication(rec.Auth)
	if err != nil {
		return nil, fmt.Errorf("session: decoding %s: %w", rec.ID, err)
	}
	return &Session{
		ID:            rec.ID,
		User:          rec.User,
		Auth:          a,
		OAuthState:    rec.OAuthState,
		OAuthProvider: rec.OAuthProvider,
		CreatedAt:     rec.CreatedAt,
	}, nil
}
