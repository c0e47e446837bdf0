package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Kitsune/app/dto"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"gorm.io/gorm"
)

// PhoneNumberFlow handles management operations on sending numbers
type PhoneNumberFlow interface {
	Create(ctx context.Context, req *dto.CreatePhoneNumberRequest, metadata *ClientMetadata) (*dto.PhoneNumberDTO, error)
	List(ctx context.Context, metadata *ClientMetadata) ([]dto.PhoneNumberDTO, error)
}

type PhoneNumberFlowImpl struct {
	phoneRepo repository.PhoneNumberRepository
	registrar IdentityRegistrar
	db        *gorm.DB
}

func NewPhoneNumberFlow(phoneRepo repository.PhoneNumberRepository, registrar IdentityRegistrar, db *gorm.DB) PhoneNumberFlow {
	return &PhoneNumberFlowImpl{
		phoneRepo: phoneRepo,
		registrar: registrar,
		db:        db,
	}
}

// Create registers the number with the outbound channel first and persists it
// only after the channel accepted it
func (f *PhoneNumberFlowImpl) Create(ctx context.Context, req *dto.CreatePhoneNumberRequest, metadata *ClientMetadata) (*dto.PhoneNumberDTO, error) {
	if req == nil {
		return nil, NewBusinessError("PHONE_NUMBER_VALIDATION_FAILED", "Create phone number validation failed", ErrNumberNotFound)
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, NewBusinessError("PHONE_NUMBER_REQUIRED", "Phone number is required", ErrNumberNotFound)
	}

	existing, err := f.phoneRepo.ByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewBusinessError("PHONE_NUMBER_EXISTS", "Phone number already exists", ErrNumberAlreadyExists)
	}

	if err := f.registrar.RegisterNumber(ctx, number); err != nil {
		return nil, NewBusinessError("CHANNEL_REGISTRATION_FAILED", "Failed to register number with the channel", ErrChannelRegistration)
	}

	pn := models.PhoneNumber{
		Number: number,
		Name:   strings.TrimSpace(req.Name),
	}
	if req.DailyLimit != nil {
		pn.DailyLimit = *req.DailyLimit
	}

	err = f.withTx(ctx, func(txCtx context.Context) error {
		return f.phoneRepo.Save(txCtx, &pn)
	})
	if err != nil {
		return nil, NewBusinessError("PHONE_NUMBER_SAVE_FAILED", "Failed to save phone number", err)
	}

	resp := dto.NewPhoneNumberDTO(&pn)
	return &resp, nil
}

func (f *PhoneNumberFlowImpl) List(ctx context.Context, metadata *ClientMetadata) ([]dto.PhoneNumberDTO, error) {
	numbers, err := f.phoneRepo.ByFilter(ctx, models.PhoneNumberFilter{}, "id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PHONE_NUMBER_LIST_FAILED", "Failed to list phone numbers", err)
	}
	return dto.NewPhoneNumberDTOs(numbers), nil
}

func (f *PhoneNumberFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
