package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
	"github.com/sirswa/crm_backend/middleware"
)

// Controllers bundles every handler the API exposes.
type Controllers struct {
	Auth        *controllers.AuthController
	Users       *controllers.UserController
	Leads       *controllers.LeadController
	Clients     *controllers.ClientController
	Development *controllers.DevelopmentController
	Expenses    *controllers.ExpenseController
	Events      *controllers.EventController
	Messages    *controllers.MessageController
	Analytics   *controllers.AnalyticsController
}

// SetupRoutes configures all API routes under /api by calling the individual
// route registration functions. The auth gate is attached per resource group
// so unknown paths under /api still answer 404.
func SetupRoutes(e *echo.Echo, ctrl Controllers, authenticate echo.MiddlewareFunc) {
	api := e.Group("/api")

	RegisterAuthRoutes(api, ctrl.Auth, authenticate)
	RegisterCRMRoutes(api, ctrl, authenticate)
	RegisterMessageRoutes(api, ctrl.Messages, ctrl.Users, authenticate)
	RegisterAnalyticsRoutes(api, ctrl.Analytics, authenticate)
	RegisterFileRoutes(api, ctrl.Users, authenticate)

	admin := api.Group("/users", authenticate, middleware.RequireAdmin())
	RegisterUserRoutes(admin, ctrl.Users)
}
