package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
)

// RegisterAuthRoutes sets up login, session lookup and logout
func RegisterAuthRoutes(api *echo.Group, authController *controllers.AuthController, authenticate echo.MiddlewareFunc) {
	auth := api.Group("/auth")
	auth.POST("/login", authController.Login)
	auth.GET("/me", authController.Me, authenticate)
	auth.POST("/logout", authController.Logout, authenticate)
}
