package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/sirswa/crm_backend/controllers"
)

// RegisterAnalyticsRoutes sets up the reporting endpoints
func RegisterAnalyticsRoutes(api *echo.Group, analyticsController *controllers.AnalyticsController, authenticate echo.MiddlewareFunc) {
	analytics := api.Group("/analytics", authenticate)
	analytics.GET("/dashboard", analyticsController.Dashboard)
	analytics.GET("/data", analyticsController.Data)
}
