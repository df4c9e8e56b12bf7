package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/models"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health
func Health(store Pinger, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "unhealthy", Database: "disconnected"})
		}
		return c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Database: "connected"})
	}
}
