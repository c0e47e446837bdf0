package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/amirphl/Kitsune/app/dto"
	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/amirphl/Kitsune/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type PhoneNumberHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

type PhoneNumberHandler struct {
	flow      businessflow.PhoneNumberFlow
	validator *validator.Validate
}

func NewPhoneNumberHandler(flow businessflow.PhoneNumberFlow) PhoneNumberHandlerInterface {
	return &PhoneNumberHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PhoneNumberHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PhoneNumberHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create registers a new sending number with the channel and persists it
func (h *PhoneNumberHandler) Create(c fiber.Ctx) error {
	var req dto.CreatePhoneNumberRequest
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

	ctx := h.createRequestContext(c, "/api/v1/phone-numbers")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Create(ctx, &req, metadata)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			switch {
			case errors.Is(businessErr.Err, businessflow.ErrNumberAlreadyExists):
				return h.ErrorResponse(c, fiber.StatusConflict, businessErr.Message, businessErr.Code, nil)
			case errors.Is(businessErr.Err, businessflow.ErrChannelRegistration):
				return h.ErrorResponse(c, fiber.StatusBadGateway, businessErr.Message, businessErr.Code, nil)
			default:
				return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
			}
		}
		log.Println("Create phone number failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create phone number", "PHONE_NUMBER_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Phone number created", res)
}

// List returns every registered sending number
func (h *PhoneNumberHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/phone-numbers")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.List(ctx, metadata)
	if err != nil {
		log.Println("List phone numbers failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list phone numbers", "PHONE_NUMBER_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Phone numbers retrieved", res)
}

func (h *PhoneNumberHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
