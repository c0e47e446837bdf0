package dto

import (
	"time"

	"github.com/amirphl/Kitsune/models"
)

// MessageStepDTO represents one step of a campaign's message sequence
type MessageStepDTO struct {
	TemplateID   uint    `json:"template_id" validate:"required"`
	DelayMinutes int     `json:"delay_minutes" validate:"gte=0"`
	Condition    *string `json:"condition,omitempty" validate:"omitempty,max=255"`
}

// CreateCampaignRequest represents the payload to create a new campaign
type CreateCampaignRequest struct {
	Name            string           `json:"name" validate:"required,max=255"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	PersonalityID   uint             `json:"personality_id" validate:"required"`
	MessageSequence []MessageStepDTO `json:"message_sequence" validate:"required,min=1,dive"`
	TargetGroups    []string         `json:"target_groups" validate:"required,min=1,dive,min=1"`
	PhoneNumberIDs  []int64          `json:"phone_number_ids" validate:"required,min=1,dive,gt=0"`
	DailyLimit      *int             `json:"daily_limit,omitempty" validate:"omitempty,gt=0"`
}

// CampaignDTO represents a campaign for responses
type CampaignDTO struct {
	ID              uint             `json:"id"`
	UUID            string           `json:"uuid"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	PersonalityID   uint             `json:"personality_id"`
	MessageSequence []MessageStepDTO `json:"message_sequence"`
	TargetGroups    []string         `json:"target_groups"`
	PhoneNumberIDs  []int64          `json:"phone_number_ids"`
	DailyLimit      int              `json:"daily_limit"`
	Active          bool             `json:"active"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       *string          `json:"updated_at,omitempty"`
}

// NewCampaignDTO maps a campaign model to its response shape
func NewCampaignDTO(m *models.Campaign) CampaignDTO {
	steps := make([]MessageStepDTO, 0, len(m.MessageSequence))
	for _, s := range m.MessageSequence {
		steps = append(steps, MessageStepDTO{
			TemplateID:   s.TemplateID,
			DelayMinutes: s.DelayMinutes,
			Condition:    s.Condition,
		})
	}
	dto := CampaignDTO{
		ID:              m.ID,
		UUID:            m.UUID.String(),
		Name:            m.Name,
		Description:     m.Description,
		PersonalityID:   m.PersonalityID,
		MessageSequence: steps,
		TargetGroups:    m.TargetGroups,
		PhoneNumberIDs:  m.PhoneNumberIDs,
		DailyLimit:      m.DailyLimit,
		Active:          m.IsActive(),
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
	if m.UpdatedAt != nil {
		s := m.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

// NewCampaignDTOs maps a list of campaign models
func NewCampaignDTOs(items []*models.Campaign) []CampaignDTO {
	out := make([]CampaignDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewCampaignDTO(m))
	}
	return out
}
