package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

// Keys under which Auth stores the caller identity on the echo context.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyEmail    = "email"
	ContextKeyRoles    = "roles"
	ContextKeyToken    = "token"
)

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*ports.TokenClaims, error)
}

// Auth validates the bearer token and injects the caller identity into the context.
func Auth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			token := strings.TrimSpace(parts[1])

			claims, err := validator.Validate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyUsername, claims.Username)
			c.Set(ContextKeyEmail, claims.Email)
			c.Set(ContextKeyRoles, claims.Roles)
			c.Set(ContextKeyToken, token)

			return next(c)
		}
	}
}
