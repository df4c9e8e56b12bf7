package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
)

// RegisterFileRoutes sets up uploads. Stored files are served statically
// under /uploads by the server setup.
func RegisterFileRoutes(api *echo.Group, userController *controllers.UserController, authenticate echo.MiddlewareFunc) {
	api.POST("/upload-profile", userController.UploadProfilePhoto, authenticate)
}
