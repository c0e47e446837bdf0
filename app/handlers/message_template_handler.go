package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kitsune/app/dto"
	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type MessageTemplateHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

type MessageTemplateHandler struct {
	flow      businessflow.MessageTemplateFlow
	validator *validator.Validate
}

func NewMessageTemplateHandler(flow businessflow.MessageTemplateFlow) MessageTemplateHandlerInterface {
	return &MessageTemplateHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *MessageTemplateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *MessageTemplateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create creates a new message template
func (h *MessageTemplateHandler) Create(c fiber.Ctx) error {
	var req dto.CreateMessageTemplateRequest
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

	ctx := h.createRequestContext(c, "/api/v1/message-templates")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Create(ctx, &req, metadata)
	if err != nil {
		log.Println("Create message template failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create message template", "TEMPLATE_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Message template created", res)
}

// List returns every message template
func (h *MessageTemplateHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/message-templates")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.List(ctx, metadata)
	if err != nil {
		log.Println("List message templates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list message templates", "TEMPLATE_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Message templates retrieved", res)
}

func (h *MessageTemplateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
