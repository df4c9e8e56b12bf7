// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/models"
)

// RequireAdmin rejects principals without the admin role. It must run after
// Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil {
				return c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "No token, authorization denied"})
			}
			if !p.IsAdmin() {
				return c.JSON(http.StatusForbidden, models.MessageResponse{Message: "Admin access required"})
			}
			return next(c)
		}
	}
}
