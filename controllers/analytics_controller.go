package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/services"
)

// AnalyticsController serves the dashboard and chart data
type AnalyticsController struct {
	aggregator services.Aggregator
	logger     *zap.Logger
	now        func() time.Time
}

func NewAnalyticsController(aggregator services.Aggregator, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{aggregator: aggregator, logger: logger, now: time.Now}
}

// Dashboard handles GET /api/analytics/dashboard
func (ac *AnalyticsController) Dashboard(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ac.aggregator.Dashboard(ctx, ac.now())
	if err != nil {
		return respondError(c, ac.logger, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Data handles GET /api/analytics/data
func (ac *AnalyticsController) Data(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := ac.aggregator.Breakdown(ctx, ac.now())
	if err != nil {
		return respondError(c, ac.logger, err)
	}
	return c.JSON(http.StatusOK, data)
}
