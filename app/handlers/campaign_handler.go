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

type CampaignHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Activate(c fiber.Ctx) error
	Deactivate(c fiber.Ctx) error
}

type CampaignHandler struct {
	flow      businessflow.CampaignFlow
	validator *validator.Validate
}

func NewCampaignHandler(flow businessflow.CampaignFlow) CampaignHandlerInterface {
	return &CampaignHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CampaignHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *CampaignHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create creates a new campaign. Campaigns are created inactive.
func (h *CampaignHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
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

	ctx := h.createRequestContext(c, "/api/v1/campaigns")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Create(ctx, &req, metadata)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			switch {
			case errors.Is(businessErr.Err, businessflow.ErrPersonalityNotFound),
				errors.Is(businessErr.Err, businessflow.ErrTemplateNotFound),
				errors.Is(businessErr.Err, businessflow.ErrNumberNotFound):
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, businessErr.Message, businessErr.Code, nil)
			default:
				return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
			}
		}
		log.Println("Create campaign failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", "CAMPAIGN_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created", res)
}

// List returns every campaign
func (h *CampaignHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/campaigns")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.List(ctx, metadata)
	if err != nil {
		log.Println("List campaigns failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list campaigns", "CAMPAIGN_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved", res)
}

// Activate marks the campaign active and triggers one immediate dispatch run
func (h *CampaignHandler) Activate(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	ctx := h.createRequestContext(c, "/api/v1/campaigns/:uuid/activate")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Activate(ctx, campaignUUID, metadata)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			switch {
			case errors.Is(businessErr.Err, businessflow.ErrCampaignNotFound):
				return h.ErrorResponse(c, fiber.StatusNotFound, businessErr.Message, businessErr.Code, nil)
			case errors.Is(businessErr.Err, businessflow.ErrCampaignAlreadyActive):
				return h.ErrorResponse(c, fiber.StatusConflict, businessErr.Message, businessErr.Code, nil)
			default:
				return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
			}
		}
		log.Println("Activate campaign failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to activate campaign", "CAMPAIGN_ACTIVATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign activated", res)
}

// Deactivate marks the campaign inactive
func (h *CampaignHandler) Deactivate(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	ctx := h.createRequestContext(c, "/api/v1/campaigns/:uuid/deactivate")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Deactivate(ctx, campaignUUID, metadata)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			if errors.Is(businessErr.Err, businessflow.ErrCampaignNotFound) {
				return h.ErrorResponse(c, fiber.StatusNotFound, businessErr.Message, businessErr.Code, nil)
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
		}
		log.Println("Deactivate campaign failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate campaign", "CAMPAIGN_DEACTIVATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign deactivated", res)
}

func (h *CampaignHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
