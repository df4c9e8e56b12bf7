package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/models"
)

const requestTimeout = 10 * time.Second

// requestContext bounds store work by the request lifetime and a timeout.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.MessageResponse{Message: msg})
}

// bind decodes the request body; malformed bodies are a 400.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return &models.ErrValidation{Message: "Invalid request body"}
	}
	return nil
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var (
		validation   *models.ErrValidation
		unauthorized *models.ErrUnauthorized
		forbidden    *models.ErrForbidden
		notFound     *models.ErrNotFound
		conflict     *models.ErrConflict
	)
	switch {
	case errors.As(err, &validation):
		return message(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &unauthorized):
		return message(c, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &forbidden):
		return message(c, http.StatusForbidden, forbidden.Error())
	case errors.As(err, &notFound):
		return message(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		return message(c, http.StatusConflict, conflict.Error())
	}

	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err),
	)
	return message(c, http.StatusInternalServerError, "Server error")
}
