package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the authenticated user's credentials.
// Its fields are either all empty (logged out) or all set (logged in).
type Session struct {
	Token    string
	UserID   string
	Username string
}

// IsLoggedIn returns true if the session carries a token.
func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}

// ExpiresAt returns the expiry of the access token, read from its claims without
// verifying the signature. It returns false if the token carries no expiry.
func (s Session) ExpiresAt() (time.Time, bool) {
	if s.Token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
