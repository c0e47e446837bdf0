package dto

import (
	"time"

	"github.com/amirphl/Kitsune/models"
)

// CreatePersonalityRequest represents the payload to create a new assistant personality
type CreatePersonalityRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Tone          *string  `json:"tone,omitempty" validate:"omitempty,oneof=formal casual friendly professional"`
	ResponseSpeed *string  `json:"response_speed,omitempty" validate:"omitempty,oneof=fast moderate slow"`
	Vocabulary    []string `json:"vocabulary,omitempty" validate:"omitempty,dive,min=1"`
	CommonPhrases []string `json:"common_phrases,omitempty" validate:"omitempty,dive,min=1"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// PersonalityDTO represents an assistant personality for responses
type PersonalityDTO struct {
	ID            uint     `json:"id"`
	UUID          string   `json:"uuid"`
	Name          string   `json:"name"`
	Tone          string   `json:"tone"`
	ResponseSpeed string   `json:"response_speed"`
	Vocabulary    []string `json:"vocabulary,omitempty"`
	CommonPhrases []string `json:"common_phrases,omitempty"`
	Description   *string  `json:"description,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// NewPersonalityDTO maps a personality model to its response shape
func NewPersonalityDTO(m *models.Personality) PersonalityDTO {
	return PersonalityDTO{
		ID:            m.ID,
		UUID:          m.UUID.String(),
		Name:          m.Name,
		Tone:          string(m.Tone),
		ResponseSpeed: string(m.ResponseSpeed),
		Vocabulary:    m.Vocabulary,
		CommonPhrases: m.CommonPhrases,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

// NewPersonalityDTOs maps a list of personality models
func NewPersonalityDTOs(items []*models.Personality) []PersonalityDTO {
	out := make([]PersonalityDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewPersonalityDTO(m))
	}
	return out
}
