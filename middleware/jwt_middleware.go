// middleware/jwt_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/models"
)

const (
	principalKey = "principal"
	tokenKey     = "token"
)

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// Authenticate requires a valid bearer token belonging to an active user and
// stores the principal in the context.
func Authenticate(auth Authenticator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "No token, authorization denied"})
			}

			principal, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				var unauthorized *models.ErrUnauthorized
				if errors.As(err, &unauthorized) {
					return c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: unauthorized.Error()})
				}
				logger.Error("authentication failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "Server error"})
			}

			c.Set(principalKey, principal)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// GetPrincipal returns the principal stored by Authenticate.
func GetPrincipal(c echo.Context) *models.Principal {
	p, _ := c.Get(principalKey).(*models.Principal)
	return p
}

// GetToken returns the bearer token accepted by Authenticate.
func GetToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
