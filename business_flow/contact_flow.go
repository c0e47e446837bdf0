package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Kitsune/app/dto"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ContactFlow handles management operations on contacts
type ContactFlow interface {
	Create(ctx context.Context, req *dto.CreateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error)
	List(ctx context.Context, metadata *ClientMetadata) ([]dto.ContactDTO, error)
}

type ContactFlowImpl struct {
	contactRepo repository.ContactRepository
	db          *gorm.DB
}

func NewContactFlow(contactRepo repository.ContactRepository, db *gorm.DB) ContactFlow {
	return &ContactFlowImpl{
		contactRepo: contactRepo,
		db:          db,
	}
}

func (f *ContactFlowImpl) Create(ctx context.Context, req *dto.CreateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error) {
	if req == nil {
		return nil, NewBusinessError("CONTACT_VALIDATION_FAILED", "Create contact validation failed", ErrContactNotFound)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, NewBusinessError("CONTACT_PHONE_REQUIRED", "Contact phone is required", ErrContactNotFound)
	}

	existing, err := f.contactRepo.ByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewBusinessError("CONTACT_EXISTS", "Contact already exists", ErrContactAlreadyExists)
	}

	c := models.Contact{
		Phone:        phone,
		Name:         req.Name,
		Tags:         pq.StringArray(req.Tags),
		Preferences:  models.PreferenceMap(req.Preferences),
		DoNotDisturb: req.DoNotDisturb,
	}

	err = f.withTx(ctx, func(txCtx context.Context) error {
		return f.contactRepo.Save(txCtx, &c)
	})
	if err != nil {
		return nil, NewBusinessError("CONTACT_SAVE_FAILED", "Failed to save contact", err)
	}

	resp := dto.NewContactDTO(&c)
	return &resp, nil
}

func (f *ContactFlowImpl) List(ctx context.Context, metadata *ClientMetadata) ([]dto.ContactDTO, error) {
	items, err := f.contactRepo.ByFilter(ctx, models.ContactFilter{}, "id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CONTACT_LIST_FAILED", "Failed to list contacts", err)
	}
	return dto.NewContactDTOs(items), nil
}

func (f *ContactFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
