package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/middleware"
	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/services"
)

// MessageController serves direct messaging
type MessageController struct {
	messages *services.MessageService
	logger   *zap.Logger
}

func NewMessageController(messages *services.MessageService, logger *zap.Logger) *MessageController {
	return &MessageController{messages: messages, logger: logger}
}

// Conversations handles GET /api/messages/conversations
func (mc *MessageController) Conversations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	convs, err := mc.messages.Conversations(ctx, middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, mc.logger, err)
	}
	return c.JSON(http.StatusOK, convs)
}

// Conversation handles GET /api/messages/conversation/:id
func (mc *MessageController) Conversation(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	msgs, err := mc.messages.Conversation(ctx, middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		return respondError(c, mc.logger, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// Send handles POST /api/messages
func (mc *MessageController) Send(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, mc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := mc.messages.Send(ctx, middleware.GetPrincipal(c), req)
	if err != nil {
		return respondError(c, mc.logger, err)
	}
	return c.JSON(http.StatusCreated, msg)
}
