package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
)

// RegisterUserRoutes sets up admin account management. The group carries the
// admin gate.
func RegisterUserRoutes(admin *echo.Group, userController *controllers.UserController) {
	admin.GET("", userController.List)
	admin.POST("", userController.Create)
	admin.PUT("/:id", userController.Update)
	admin.DELETE("/:id", userController.Delete)
}
