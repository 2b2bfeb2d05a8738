package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrNoPassword         = errors.New("a shared password or bcrypt hash is required")
)

// Ensure SharedPasswordAuthenticator implements Authenticator
var _ Authenticator = (*SharedPasswordAuthenticator)(nil)

// SharedPasswordAuthenticator checks a single household password. Only the
// bcrypt hash is kept in memory.
type SharedPasswordAuthenticator struct {
	hash []byte
}

// NewSharedPasswordAuthenticator builds an authenticator from either a bcrypt
// hash (preferred) or a plain password that is hashed on startup.
func NewSharedPasswordAuthenticator(password, hash string) (*SharedPasswordAuthenticator, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		return &SharedPasswordAuthenticator{hash: []byte(hash)}, nil
	}
	if password == "" {
		return nil, ErrNoPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &SharedPasswordAuthenticator{hash: hashed}, nil
}

// Authenticate compares credential with the stored hash.
func (a *SharedPasswordAuthenticator) Authenticate(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
