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

// PersonalityFlow handles management operations on assistant personalities
type PersonalityFlow interface {
	Create(ctx context.Context, req *dto.CreatePersonalityRequest, metadata *ClientMetadata) (*dto.PersonalityDTO, error)
	List(ctx context.Context, metadata *ClientMetadata) ([]dto.PersonalityDTO, error)
}

type PersonalityFlowImpl struct {
	personalityRepo repository.PersonalityRepository
	db              *gorm.DB
}

func NewPersonalityFlow(personalityRepo repository.PersonalityRepository, db *gorm.DB) PersonalityFlow {
	return &PersonalityFlowImpl{
		personalityRepo: personalityRepo,
		db:              db,
	}
}

func (f *PersonalityFlowImpl) Create(ctx context.Context, req *dto.CreatePersonalityRequest, metadata *ClientMetadata) (*dto.PersonalityDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("PERSONALITY_VALIDATION_FAILED", "Personality name is required", ErrPersonalityNotFound)
	}

	p := models.Personality{
		Name:          strings.TrimSpace(req.Name),
		Vocabulary:    pq.StringArray(req.Vocabulary),
		CommonPhrases: pq.StringArray(req.CommonPhrases),
		Description:   req.Description,
	}
	if req.Tone != nil {
		p.Tone = models.Tone(*req.Tone)
		if !p.Tone.Valid() {
			return nil, NewBusinessError("PERSONALITY_TONE_INVALID", "Unknown personality tone", nil)
		}
	}
	if req.ResponseSpeed != nil {
		p.ResponseSpeed = models.ResponseSpeed(*req.ResponseSpeed)
		if !p.ResponseSpeed.Valid() {
			return nil, NewBusinessError("PERSONALITY_SPEED_INVALID", "Unknown response speed", nil)
		}
	}

	err := f.withTx(ctx, func(txCtx context.Context) error {
		return f.personalityRepo.Save(txCtx, &p)
	})
	if err != nil {
		return nil, NewBusinessError("PERSONALITY_SAVE_FAILED", "Failed to save personality", err)
	}

	resp := dto.NewPersonalityDTO(&p)
	return &resp, nil
}

func (f *PersonalityFlowImpl) List(ctx context.Context, metadata *ClientMetadata) ([]dto.PersonalityDTO, error) {
	items, err := f.personalityRepo.ByFilter(ctx, models.PersonalityFilter{}, "id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PERSONALITY_LIST_FAILED", "Failed to list personalities", err)
	}
	return dto.NewPersonalityDTOs(items), nil
}

func (f *PersonalityFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
