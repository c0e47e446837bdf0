package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Kitsune/app/dto"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"github.com/amirphl/Kitsune/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CampaignFlow handles management operations on campaigns
type CampaignFlow interface {
	Create(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error)
	List(ctx context.Context, metadata *ClientMetadata) ([]dto.CampaignDTO, error)
	// Activate marks the campaign active and requests one immediate dispatch run.
	Activate(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDTO, error)
	// Deactivate marks the campaign inactive; the current tick's run, if any,
	// finishes undisturbed. Idempotent.
	Deactivate(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDTO, error)
}

type CampaignFlowImpl struct {
	campaignRepo    repository.CampaignRepository
	personalityRepo repository.PersonalityRepository
	templateRepo    repository.MessageTemplateRepository
	phoneRepo       repository.PhoneNumberRepository
	trigger         DispatchTrigger
	db              *gorm.DB
}

func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	personalityRepo repository.PersonalityRepository,
	templateRepo repository.MessageTemplateRepository,
	phoneRepo repository.PhoneNumberRepository,
	trigger DispatchTrigger,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:    campaignRepo,
		personalityRepo: personalityRepo,
		templateRepo:    templateRepo,
		phoneRepo:       phoneRepo,
		trigger:         trigger,
		db:              db,
	}
}

// Create validates every reference the campaign carries before persisting:
// the personality, each sequence step's template and each sending number must
// exist. Campaigns are created inactive.
func (f *CampaignFlowImpl) Create(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
	}
	if len(req.TargetGroups) == 0 {
		return nil, NewBusinessError("CAMPAIGN_TARGET_GROUPS_REQUIRED", "At least one target group is required", ErrTargetGroupsRequired)
	}
	if len(req.PhoneNumberIDs) == 0 {
		return nil, NewBusinessError("CAMPAIGN_PHONE_NUMBERS_REQUIRED", "At least one sending number is required", ErrPhoneNumbersRequired)
	}

	personality, err := f.personalityRepo.ByID(ctx, req.PersonalityID)
	if err != nil {
		return nil, err
	}
	if personality == nil {
		return nil, NewBusinessError("PERSONALITY_NOT_FOUND", "Personality not found", ErrPersonalityNotFound)
	}

	steps := make(models.MessageSequence, 0, len(req.MessageSequence))
	for _, s := range req.MessageSequence {
		template, err := f.templateRepo.ByID(ctx, s.TemplateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Message template not found", ErrTemplateNotFound)
		}
		steps = append(steps, models.MessageStep{
			TemplateID:   s.TemplateID,
			DelayMinutes: s.DelayMinutes,
			Condition:    s.Condition,
		})
	}

	ids := make([]uint, 0, len(req.PhoneNumberIDs))
	for _, id := range req.PhoneNumberIDs {
		ids = append(ids, uint(id))
	}
	numbers, err := f.phoneRepo.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(numbers) != len(ids) {
		return nil, NewBusinessError("PHONE_NUMBER_NOT_FOUND", "One or more sending numbers do not exist", ErrNumberNotFound)
	}

	campaign := models.Campaign{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		PersonalityID:   req.PersonalityID,
		MessageSequence: steps,
		TargetGroups:    pq.StringArray(req.TargetGroups),
		PhoneNumberIDs:  pq.Int64Array(req.PhoneNumberIDs),
	}
	if req.DailyLimit != nil {
		campaign.DailyLimit = *req.DailyLimit
	}

	err = f.withTx(ctx, func(txCtx context.Context) error {
		return f.campaignRepo.Save(txCtx, &campaign)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_SAVE_FAILED", "Failed to save campaign", err)
	}

	resp := dto.NewCampaignDTO(&campaign)
	return &resp, nil
}

func (f *CampaignFlowImpl) List(ctx context.Context, metadata *ClientMetadata) ([]dto.CampaignDTO, error) {
	items, err := f.campaignRepo.ByFilter(ctx, models.CampaignFilter{}, "id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	return dto.NewCampaignDTOs(items), nil
}

func (f *CampaignFlowImpl) Activate(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDTO, error) {
	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.IsActive() {
		return nil, NewBusinessError("CAMPAIGN_ALREADY_ACTIVE", "Campaign is already active", ErrCampaignAlreadyActive)
	}

	err = f.withTx(ctx, func(txCtx context.Context) error {
		return f.campaignRepo.SetActive(txCtx, campaign.ID, true)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_ACTIVATE_FAILED", "Failed to activate campaign", err)
	}
	campaign.Active = utils.ToPtr(true)

	if f.trigger != nil {
		f.trigger.TriggerNow(campaign.ID)
	}

	resp := dto.NewCampaignDTO(campaign)
	return &resp, nil
}

func (f *CampaignFlowImpl) Deactivate(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDTO, error) {
	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	if campaign.IsActive() {
		err = f.withTx(ctx, func(txCtx context.Context) error {
			return f.campaignRepo.SetActive(txCtx, campaign.ID, false)
		})
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_DEACTIVATE_FAILED", "Failed to deactivate campaign", err)
		}
		campaign.Active = utils.ToPtr(false)
	}

	resp := dto.NewCampaignDTO(campaign)
	return &resp, nil
}

func (f *CampaignFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
