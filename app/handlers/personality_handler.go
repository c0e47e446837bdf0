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

type PersonalityHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

type PersonalityHandler struct {
	flow      businessflow.PersonalityFlow
	validator *validator.Validate
}

func NewPersonalityHandler(flow businessflow.PersonalityFlow) PersonalityHandlerInterface {
	return &PersonalityHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PersonalityHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PersonalityHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create creates a new assistant personality
func (h *PersonalityHandler) Create(c fiber.Ctx) error {
	var req dto.CreatePersonalityRequest
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

	ctx := h.createRequestContext(c, "/api/v1/personalities")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Create(ctx, &req, metadata)
	if err != nil {
		log.Println("Create personality failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create personality", "PERSONALITY_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Personality created", res)
}

// List returns every assistant personality
func (h *PersonalityHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/personalities")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.List(ctx, metadata)
	if err != nil {
		log.Println("List personalities failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list personalities", "PERSONALITY_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Personalities retrieved", res)
}

func (h *PersonalityHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
