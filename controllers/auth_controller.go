// controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/middleware"
	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/services"
)

// AuthController handles login, session lookup and logout
type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthController(auth *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, ac.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := ac.auth.Login(ctx, req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.GetPrincipal(c))
}

// Logout handles POST /api/auth/logout
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ac.auth.Logout(ctx, middleware.GetToken(c)); err != nil {
		return respondError(c, ac.logger, err)
	}
	return message(c, http.StatusOK, "Logged out successfully")
}
