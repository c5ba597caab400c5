package store

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"course_miniapp/models"
)

var ErrNoSession = errors.New("no session token")

// TokenPreview shows the first ten characters of the session token.
func (s *Store) TokenPreview() string {
	token := s.Snapshot().Token
	if token == "" {
		return "none"
	}
	if len(token) <= 10 {
		return token + "..."
	}
	return token[:10] + "..."
}

// TokenClaims decodes the session token's claims for display. The
// signature is not checked; only the backend can do that.
func (s *Store) TokenClaims() (*models.Claims, error) {
	token := s.Snapshot().Token
	if token == "" {
		return nil, ErrNoSession
	}
	claims := &models.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session token is not a JWT: %w", err)
	}
	return claims, nil
}
