package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/amirphl/Kitsune/app/dto"
	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type ContactHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

type ContactHandler struct {
	flow      businessflow.ContactFlow
	validator *validator.Validate
}

func NewContactHandler(flow businessflow.ContactFlow) ContactHandlerInterface {
	return &ContactHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ContactHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *ContactHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create creates a new contact
func (h *ContactHandler) Create(c fiber.Ctx) error {
	var req dto.CreateContactRequest
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

	ctx := h.createRequestContext(c, "/api/v1/contacts")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Create(ctx, &req, metadata)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			if errors.Is(businessErr.Err, businessflow.ErrContactAlreadyExists) {
				return h.ErrorResponse(c, fiber.StatusConflict, businessErr.Message, businessErr.Code, nil)
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
		}
		log.Println("Create contact failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create contact", "CONTACT_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Contact created", res)
}

// List returns every contact
func (h *ContactHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/contacts")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.List(ctx, metadata)
	if err != nil {
		log.Println("List contacts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list contacts", "CONTACT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contacts retrieved", res)
}

func (h *ContactHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
