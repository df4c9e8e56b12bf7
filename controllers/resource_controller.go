package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/middleware"
	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/services"
)

// ResourceController serves the CRUD routes of one CRM collection.
type ResourceController[T any, PT interface {
	*T
	models.Document
}, I any] struct {
	service *services.ResourceService[T, PT, I]
	logger  *zap.Logger
}

func NewResourceController[T any, PT interface {
	*T
	models.Document
}, I any](service *services.ResourceService[T, PT, I], logger *zap.Logger) *ResourceController[T, PT, I] {
	return &ResourceController[T, PT, I]{service: service, logger: logger}
}

// List handles GET /
func (rc *ResourceController[T, PT, I]) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	docs, err := rc.service.List(ctx, middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, rc.logger, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// Create handles POST /
func (rc *ResourceController[T, PT, I]) Create(c echo.Context) error {
	in := new(I)
	if err := bind(c, in); err != nil {
		return respondError(c, rc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := rc.service.Create(ctx, middleware.GetPrincipal(c), in)
	if err != nil {
		return respondError(c, rc.logger, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Update handles PUT /:id
func (rc *ResourceController[T, PT, I]) Update(c echo.Context) error {
	in := new(I)
	if err := bind(c, in); err != nil {
		return respondError(c, rc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := rc.service.Update(ctx, middleware.GetPrincipal(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, rc.logger, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /:id
func (rc *ResourceController[T, PT, I]) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := rc.service.Delete(ctx, middleware.GetPrincipal(c), c.Param("id")); err != nil {
		return respondError(c, rc.logger, err)
	}
	return message(c, http.StatusOK, rc.service.Name()+" deleted")
}

type (
	LeadController        = ResourceController[models.Lead, *models.Lead, models.LeadInput]
	ClientController      = ResourceController[models.Client, *models.Client, models.ClientInput]
	DevelopmentController = ResourceController[models.Development, *models.Development, models.DevelopmentInput]
	ExpenseController     = ResourceController[models.Expense, *models.Expense, models.ExpenseInput]
	EventController       = ResourceController[models.Event, *models.Event, models.EventInput]
)
