package ports

import (
	"context"
	"time"

	"github.com/campusportal/student-records/internal/core/domain"
)

// PasswordHasher is a one-way encode plus constant-time verify capability.
type PasswordHasher interface {
	Encode(plaintext string) (string, error)
	Matches(plaintext, hash string) bool
}

// Authenticator verifies a username-or-email and password pair.
// Every failure caused by bad input is domain.ErrInvalidCredentials.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, plaintext string) (*domain.User, error)
}

// IssuedToken is a signed access token and its expiry.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// TokenClaims is the identity recovered from a valid token.
type TokenClaims struct {
	ID        string
	Subject   string
	Username  string
	Email     string
	Roles     domain.RoleSet
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and validates access tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (IssuedToken, error)
	// Validate returns domain.ErrInvalidToken for any token that must not be trusted.
	Validate(ctx context.Context, token string) (*TokenClaims, error)
}

// RevocationList remembers token ids that were logged out before expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// KeyLocker provides mutual exclusion scoped to a key. The returned unlock func is
// safe to call once.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
