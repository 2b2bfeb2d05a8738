package auth

import "context"

// Authenticator defines the interface for checking the household credential.
// This abstraction allows swapping the shared password for another scheme
// without changing the service layer code.
type Authenticator interface {
	// Authenticate returns nil when credential grants access, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, credential string) error
}
