package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/Kitsune/app/dto"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateCampaignRequest() *dto.CreateCampaignRequest {
	return &dto.CreateCampaignRequest{
		Name:            "Spring Launch",
		PersonalityID:   1,
		MessageSequence: []dto.MessageStepDTO{{TemplateID: 1}},
		TargetGroups:    []string{"leads"},
		PhoneNumberIDs:  []int64{1},
	}
}

func newCampaignFlowUnderTest(
	campaignRepo *fakeCampaignRepo,
	trigger *fakeTrigger,
) CampaignFlow {
	personality := &models.Personality{ID: 1, Name: "Casual Carla", Tone: models.ToneCasual}
	template := &models.MessageTemplate{ID: 1, Name: "Greeting", Content: "Hi {name}"}
	number := &models.PhoneNumber{ID: 1, Number: "+5511000000001", Status: models.PhoneStatusOnline}

	return NewCampaignFlow(
		campaignRepo,
		newFakePersonalityRepo(personality),
		newFakeTemplateRepo(template),
		newFakePhoneRepo(number),
		trigger,
		nil,
	)
}

func TestCampaignFlowCreate(t *testing.T) {
	metadata := NewClientMetadata("127.0.0.1", "test")

	t.Run("CreatesInactiveCampaign", func(t *testing.T) {
		campaignRepo := newFakeCampaignRepo()
		flow := newCampaignFlowUnderTest(campaignRepo, &fakeTrigger{})

		created, err := flow.Create(context.Background(), validCreateCampaignRequest(), metadata)

		require.NoError(t, err)
		assert.Equal(t, "Spring Launch", created.Name)
		assert.False(t, created.Active)
		require.Len(t, created.MessageSequence, 1)
		assert.Equal(t, uint(1), created.MessageSequence[0].TemplateID)

		saved, err := campaignRepo.ByID(context.Background(), created.ID)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.False(t, saved.IsActive())
	})

	t.Run("UnknownPersonality", func(t *testing.T) {
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(), &fakeTrigger{})

		req := validCreateCampaignRequest()
		req.PersonalityID = 99
		_, err := flow.Create(context.Background(), req, metadata)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPersonalityNotFound))
	})

	t.Run("UnknownTemplateInSequence", func(t *testing.T) {
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(), &fakeTrigger{})

		req := validCreateCampaignRequest()
		req.MessageSequence = []dto.MessageStepDTO{{TemplateID: 99}}
		_, err := flow.Create(context.Background(), req, metadata)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
	})

	t.Run("UnknownPhoneNumber", func(t *testing.T) {
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(), &fakeTrigger{})

		req := validCreateCampaignRequest()
		req.PhoneNumberIDs = []int64{1, 99}
		_, err := flow.Create(context.Background(), req, metadata)

		require.Error(t, err)
		assert.True(t, IsNumberNotFound(err))
	})

	t.Run("MissingTargetGroups", func(t *testing.T) {
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(), &fakeTrigger{})

		req := validCreateCampaignRequest()
		req.TargetGroups = nil
		_, err := flow.Create(context.Background(), req, metadata)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTargetGroupsRequired))
	})
}

func TestCampaignFlowActivate(t *testing.T) {
	metadata := NewClientMetadata("127.0.0.1", "test")

	t.Run("ActivatesAndTriggersImmediateRun", func(t *testing.T) {
		campaign := &models.Campaign{ID: 1, Name: "Launch", PersonalityID: 1, Active: utils.ToPtr(false)}
		campaignRepo := newFakeCampaignRepo(campaign)
		trigger := &fakeTrigger{}
		flow := newCampaignFlowUnderTest(campaignRepo, trigger)

		activated, err := flow.Activate(context.Background(), campaign.UUID.String(), metadata)

		require.NoError(t, err)
		assert.True(t, activated.Active)
		assert.True(t, campaign.IsActive())
		assert.Equal(t, []uint{campaign.ID}, trigger.triggered)
	})

	t.Run("AlreadyActive", func(t *testing.T) {
		campaign := &models.Campaign{ID: 1, Name: "Launch", PersonalityID: 1, Active: utils.ToPtr(true)}
		trigger := &fakeTrigger{}
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(campaign), trigger)

		_, err := flow.Activate(context.Background(), campaign.UUID.String(), metadata)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCampaignAlreadyActive))
		assert.Empty(t, trigger.triggered)
	})

	t.Run("UnknownCampaign", func(t *testing.T) {
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(), &fakeTrigger{})

		_, err := flow.Activate(context.Background(), uuid.New().String(), metadata)

		require.Error(t, err)
		assert.True(t, IsCampaignNotFound(err))
	})
}

func TestCampaignFlowDeactivate(t *testing.T) {
	metadata := NewClientMetadata("127.0.0.1", "test")

	t.Run("DeactivatesActiveCampaign", func(t *testing.T) {
		campaign := &models.Campaign{ID: 1, Name: "Launch", PersonalityID: 1, Active: utils.ToPtr(true)}
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(campaign), &fakeTrigger{})

		deactivated, err := flow.Deactivate(context.Background(), campaign.UUID.String(), metadata)

		require.NoError(t, err)
		assert.False(t, deactivated.Active)
		assert.False(t, campaign.IsActive())
	})

	t.Run("IdempotentOnInactiveCampaign", func(t *testing.T) {
		campaign := &models.Campaign{ID: 1, Name: "Launch", PersonalityID: 1, Active: utils.ToPtr(false)}
		flow := newCampaignFlowUnderTest(newFakeCampaignRepo(campaign), &fakeTrigger{})

		deactivated, err := flow.Deactivate(context.Background(), campaign.UUID.String(), metadata)

		require.NoError(t, err)
		assert.False(t, deactivated.Active)
	})
}
