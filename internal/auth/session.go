package auth

import (
	"errors"
	"time"

	"flipquiz/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired session")

type sessionClaims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name"`
	PhotoURL    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies HS256 session tokens carrying a signed-in
// identity.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

func (s *Sessions) Issue(identity store.Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT_SECRET is not set")
	}
	if identity.UID == "" {
		return "", errors.New("identity has no uid")
	}
	now := s.now()
	claims := sessionClaims{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Sessions) Verify(raw string) (store.Identity, error) {
	if raw == "" || len(s.secret) == 0 {
		return store.Identity{}, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return store.Identity{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return store.Identity{}, ErrInvalidToken
	}
	return store.Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
	}, nil
}
