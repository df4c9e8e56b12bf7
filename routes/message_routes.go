package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
)

// RegisterMessageRoutes sets up direct messaging
func RegisterMessageRoutes(api *echo.Group, messageController *controllers.MessageController, userController *controllers.UserController, authenticate echo.MiddlewareFunc) {
	messages := api.Group("/messages", authenticate)
	messages.GET("/conversations", messageController.Conversations)
	messages.GET("/conversation/:id", messageController.Conversation)
	messages.POST("", messageController.Send)
	messages.GET("/users", userController.Contacts)
}
