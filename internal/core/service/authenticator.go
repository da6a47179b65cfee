package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

// dummyPasswordHash is verified against when the identifier matches nobody so that a
// missing user and a wrong password take the same time. It matches no password.
//
//nolint:gosec // G101: not a credential.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3swaf0b4VY1zZ5E6qR3hHHa"

// CredentialAuthenticator verifies credentials against the user store.
type CredentialAuthenticator struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewCredentialAuthenticator(users ports.UserRepository, hasher ports.PasswordHasher) *CredentialAuthenticator {
	return &CredentialAuthenticator{users: users, hasher: hasher}
}

// Authenticate returns the identity matching identifier when password is correct.
// Unknown identifiers and wrong passwords both yield domain.ErrInvalidCredentials.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := a.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		a.hasher.Matches(password, dummyPasswordHash)
		return nil, domain.ErrInvalidCredentials
	}

	if !a.hasher.Matches(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
