package ports

import (
	"context"
	"time"

	"github.com/campusportal/student-records/internal/core/domain"
)

// RegisterInput carries a self-service registration.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// LoginInput carries login credentials. UsernameOrEmail matches either field.
type LoginInput struct {
	UsernameOrEmail string
	Password        string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken        string
	TokenType          string
	ExpiresAt          time.Time
	MustChangePassword bool
	Role               domain.Role
	Roles              domain.RoleSet
}

// ChangePasswordInput carries a credential rotation request.
type ChangePasswordInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

// AdminInput describes the bootstrap administrator.
type AdminInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
	Logout(ctx context.Context, token string) error
}
