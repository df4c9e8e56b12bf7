package routes

import (
	"github.com/labstack/echo/v4"
)

// crudHandlers is the handler set every CRM collection exposes.
type crudHandlers interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

func registerCRUD(api *echo.Group, prefix string, h crudHandlers, authenticate echo.MiddlewareFunc) {
	r := api.Group(prefix, authenticate)
	r.GET("", h.List)
	r.POST("", h.Create)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

// RegisterCRMRoutes sets up the lead, client, development, expense and event collections
func RegisterCRMRoutes(api *echo.Group, ctrl Controllers, authenticate echo.MiddlewareFunc) {
	registerCRUD(api, "/leads", ctrl.Leads, authenticate)
	registerCRUD(api, "/clients", ctrl.Clients, authenticate)
	registerCRUD(api, "/development", ctrl.Development, authenticate)
	registerCRUD(api, "/expenses", ctrl.Expenses, authenticate)
	registerCRUD(api, "/events", ctrl.Events, authenticate)
}
