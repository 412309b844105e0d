package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned by verifiers for tokens they cannot accept.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID      string
	FirebaseUID string
	Email       string
	Name        string
	PhotoURL    string
}

// TokenVerifier resolves a bearer token to an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
