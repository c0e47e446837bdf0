package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/amirphl/Kitsune/app/dto"
	"github.com/amirphl/Kitsune/app/services"
	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type WebhookHandlerInterface interface {
	InboundMessage(c fiber.Ctx) error
}

// WebhookHandler receives channel callbacks and routes them into the inbound
// delivery boundary
type WebhookHandler struct {
	channel   services.WhatsAppService
	validator *validator.Validate
}

func NewWebhookHandler(channel services.WhatsAppService) WebhookHandlerInterface {
	return &WebhookHandler{
		channel:   channel,
		validator: validator.New(),
	}
}

func (h *WebhookHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *WebhookHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// InboundMessage handles one inbound message callback from the channel
func (h *WebhookHandler) InboundMessage(c fiber.Ctx) error {
	var req dto.InboundMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/webhooks/whatsapp/inbound")

	if err := h.channel.Deliver(ctx, req.From, req.To, req.Text); err != nil {
		switch {
		case businessflow.IsUnregisteredNumber(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Receiving number is not registered", "UNREGISTERED_NUMBER", nil)
		case errors.Is(err, businessflow.ErrEmptyInboundText):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Inbound message text is empty", "EMPTY_INBOUND_TEXT", nil)
		default:
			log.Println("Inbound message handling failed", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to handle inbound message", "INBOUND_HANDLING_FAILED", nil)
		}
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Inbound message handled", nil)
}

func (h *WebhookHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
