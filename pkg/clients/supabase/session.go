package supabase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated identity managed by the auth service.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Session is an access/refresh token pair for a user.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Expiry returns when the access token stops being valid. expires_at wins over
// the token's own exp claim.
func (s *Session) Expiry() (time.Time, error) {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0), nil
	}
	return tokenExpiry(s.AccessToken)
}

// ExpiresWithin reports whether the access token expires before now+margin.
// Sessions whose expiry cannot be determined are treated as expiring.
func (s *Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	exp, err := s.Expiry()
	if err != nil {
		return true
	}
	return !exp.After(now.Add(margin))
}

// tokenExpiry reads the exp claim without verifying the signature; the auth
// service is the only party that can verify it.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
