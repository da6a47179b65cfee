package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusportal/student-records/internal/api/middleware"
)

// bearerToken returns the raw token the Auth middleware accepted. Its absence means the
// route was mounted without the middleware.
func bearerToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return token, nil
}
