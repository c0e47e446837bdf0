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

// MessageTemplateFlow handles management operations on message templates
type MessageTemplateFlow interface {
	Create(ctx context.Context, req *dto.CreateMessageTemplateRequest, metadata *ClientMetadata) (*dto.MessageTemplateDTO, error)
	List(ctx context.Context, metadata *ClientMetadata) ([]dto.MessageTemplateDTO, error)
}

type MessageTemplateFlowImpl struct {
	templateRepo repository.MessageTemplateRepository
	db           *gorm.DB
}

func NewMessageTemplateFlow(templateRepo repository.MessageTemplateRepository, db *gorm.DB) MessageTemplateFlow {
	return &MessageTemplateFlowImpl{
		templateRepo: templateRepo,
		db:           db,
	}
}

func (f *MessageTemplateFlowImpl) Create(ctx context.Context, req *dto.CreateMessageTemplateRequest, metadata *ClientMetadata) (*dto.MessageTemplateDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("TEMPLATE_VALIDATION_FAILED", "Template name is required", ErrTemplateNotFound)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, NewBusinessError("TEMPLATE_CONTENT_REQUIRED", "Template content is required", ErrTemplateNotFound)
	}

	t := models.MessageTemplate{
		Name:      strings.TrimSpace(req.Name),
		Category:  req.Category,
		Content:   req.Content,
		Variables: pq.StringArray(req.Variables),
	}

	err := f.withTx(ctx, func(txCtx context.Context) error {
		return f.templateRepo.Save(txCtx, &t)
	})
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_SAVE_FAILED", "Failed to save message template", err)
	}

	resp := dto.NewMessageTemplateDTO(&t)
	return &resp, nil
}

func (f *MessageTemplateFlowImpl) List(ctx context.Context, metadata *ClientMetadata) ([]dto.MessageTemplateDTO, error) {
	items, err := f.templateRepo.ByFilter(ctx, models.MessageTemplateFilter{}, "id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list message templates", err)
	}
	return dto.NewMessageTemplateDTOs(items), nil
}

func (f *MessageTemplateFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
