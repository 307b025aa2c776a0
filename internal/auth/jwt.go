package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into, and required on, every token this service signs.
const Issuer = "boardsvc"

// ErrTokenExpired is returned by Validate for a well-signed but expired token.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService signs and verifies the session cookie.
//
// The cookie value is a JWT whose subject is the server-side session id:
//
//	HEADER.PAYLOAD.SIGNATURE
//	{"alg":"HS256"}.{"iss":"boardsvc","sub":"<xid>","exp":...}.HMAC-SHA256
//
// The token carries no user data. It only proves that the session id was
// handed out by this server, so a client cannot guess or forge another
// browser's session id.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 16 characters.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// NewTokenServiceWithClock is NewTokenService with a custom time source for
// both signing and expiry checks.
func NewTokenServiceWithClock(secret string, now func() time.Time) (*TokenService, error) {
	s, err := NewTokenService(secret)
	if err != nil {
		return nil, err
	}
	s.now = now
	return s, nil
}

// Generate signs a token for subject that expires after ttl.
// A non-positive ttl yields an already-expired token.
func (s *TokenService) Generate(subject string, ttl time.Duration) (string, error) {
	now := s.now()

	c := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    Issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the subject.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	subject, _, err := s.Parse(tokenStr)
	return subject, err
}

// Parse is Validate that also returns the token's expiry.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected.
func (s *TokenService) Parse(tokenStr string) (string, time.Time, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, ErrTokenExpired
		}
		return "", time.Time{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", time.Time{}, errors.New("auth: invalid token")
	}
	if c.Subject == "" {
		return "", time.Time{}, errors.New("auth: token has no subject")
	}
	return c.Subject, c.ExpiresAt.Time, nil
}
