package providers

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when a token is missing, malformed or rejected
var ErrInvalidToken = errors.New("invalid token")

// AuthProvider verifies identity tokens presented by players
type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

// TokenClaims identifies the caller. UID is the userId used in game requests.
type TokenClaims struct {
	UID  string `json:"uid"`
	Name string `json:"name,omitempty"`
}

// StaticAuthProvider accepts a fixed set of tokens. Used for local play and tests.
type StaticAuthProvider map[string]*TokenClaims

var _ AuthProvider = StaticAuthProvider{}

func (p StaticAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	claims, ok := p[idToken]
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
