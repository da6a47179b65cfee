package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

const defaultIssuer = "student-records"

// TokenConfig is the signing configuration. It is built once at startup.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

type accessClaims struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access tokens and validates them, optionally consulting a
// revocation list.
type JWTIssuer struct {
	cfg         TokenConfig
	revocations ports.RevocationList
	now         func() time.Time
}

func NewJWTIssuer(cfg TokenConfig, revocations ports.RevocationList) (*JWTIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt: token ttl must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	cfg.Secret = append([]byte(nil), cfg.Secret...)
	return &JWTIssuer{cfg: cfg, revocations: revocations, now: time.Now}, nil
}

func (i *JWTIssuer) Issue(user *domain.User) (ports.IssuedToken, error) {
	now := i.now()
	expiresAt := now.Add(i.cfg.TTL)
	claims := accessClaims{
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return ports.IssuedToken{Token: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (i *JWTIssuer) Validate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return i.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if i.revocations != nil && claims.ID != "" {
		revoked, err := i.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("jwt: check revocation: %w", err)
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	out := &ports.TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		Roles:     domain.RoleSetFromStrings(claims.Roles),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
