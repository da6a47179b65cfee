package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
	"github.com/campusportal/student-records/internal/metrics"
)

const (
	registeredMessage = "User registered successfully"
	tokenTypeBearer   = "Bearer"

	CodeCurrentPasswordWrong = "current_password_incorrect"
)

// AuthService implements registration, login, logout and password change.
type AuthService struct {
	users         ports.UserRepository
	hasher        ports.PasswordHasher
	authenticator ports.Authenticator
	tokens        ports.TokenIssuer
	revocations   ports.RevocationList
	log           zerolog.Logger
}

// NewAuthService builds an AuthService. revocations may be nil, in which case Logout
// only validates the token.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	authenticator ports.Authenticator,
	tokens ports.TokenIssuer,
	revocations ports.RevocationList,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		authenticator: authenticator,
		tokens:        tokens,
		revocations:   revocations,
		log:           log,
	}
}

// Register creates a student identity. Username is checked for uniqueness before email.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: check username: %w", err)
	}
	if taken {
		metrics.RegistrationsTotal.WithLabelValues("username_taken").Inc()
		return "", domain.ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: check email: %w", err)
	}
	if taken {
		metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
		return "", domain.ErrEmailTaken
	}

	hash, err := s.hasher.Encode(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(domain.RoleStudent),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(ctx, user); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("user registered")
	return registeredMessage, nil
}

// Login verifies credentials and issues an access token. The second lookup that reads
// the must-change-password flag and roles is best-effort.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	identifier := strings.TrimSpace(in.UsernameOrEmail)
	verified, err := s.authenticator.Authenticate(ctx, identifier, in.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	issued, err := s.tokens.Issue(verified)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	result := &ports.LoginResult{
		AccessToken: issued.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   issued.ExpiresAt,
		Roles:       domain.RoleSet{},
	}

	current, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	switch {
	case err == nil:
		result.MustChangePassword = current.MustChangePassword
		if current.Roles != nil {
			result.Roles = current.Roles
		}
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("login: account flags lookup failed")
	}
	result.Role = result.Roles.Primary()

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", verified.ID).Bool("must_change_password", result.MustChangePassword).Msg("user logged in")
	return result, nil
}

// ChangePassword rotates the credential of the identity with the given email and clears
// its must-change-password flag.
func (s *AuthService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.PasswordChangesTotal.WithLabelValues("not_found").Inc()
			return domain.ErrUserNotFound
		}
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: find user: %w", err)
	}

	if !s.hasher.Matches(in.CurrentPassword, user.PasswordHash) {
		metrics.PasswordChangesTotal.WithLabelValues("wrong_password").Inc()
		return domain.NewValidationError(CodeCurrentPasswordWrong, "current password is incorrect")
	}

	hash, err := s.hasher.Encode(in.NewPassword)
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: hash: %w", err)
	}

	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: save: %w", err)
	}

	metrics.PasswordChangesTotal.WithLabelValues("changed").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// Logout revokes a valid token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("logout: revoke token: %w", err)
	}
	s.log.Info().Str("user_id", claims.Subject).Str("jti", claims.ID).Msg("token revoked")
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no identity uses its email.
// It is a no-op when email or password is empty.
func (s *AuthService) EnsureAdmin(ctx context.Context, in ports.AdminInput) error {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if exists {
		s.log.Info().Str("email", in.Email).Msg("admin user already exists")
		return nil
	}

	hash, err := s.hasher.Encode(in.Password)
	if err != nil {
		return fmt.Errorf("ensure admin: hash password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(domain.RoleAdmin),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: save: %w", err)
	}

	s.log.Info().Str("email", in.Email).Msg("admin user created")
	return nil
}
