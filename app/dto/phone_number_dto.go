// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"

	"github.com/amirphl/Kitsune/models"
)

// CreatePhoneNumberRequest represents the payload to register a new sending number
type CreatePhoneNumberRequest struct {
	Number     string `json:"number" validate:"required,min=3,max=50"`
	Name       string `json:"name" validate:"required,max=255"`
	DailyLimit *int   `json:"daily_limit,omitempty" validate:"omitempty,gt=0"`
}

// PhoneNumberDTO represents a sending number for responses
type PhoneNumberDTO struct {
	ID         uint    `json:"id"`
	UUID       string  `json:"uuid"`
	Number     string  `json:"number"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	SentToday  int     `json:"sent_today"`
	DailyLimit int     `json:"daily_limit"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// NewPhoneNumberDTO maps a phone number model to its response shape
func NewPhoneNumberDTO(m *models.PhoneNumber) PhoneNumberDTO {
	dto := PhoneNumberDTO{
		ID:         m.ID,
		UUID:       m.UUID.String(),
		Number:     m.Number,
		Name:       m.Name,
		Status:     string(m.Status),
		SentToday:  m.SentToday,
		DailyLimit: m.DailyLimit,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  m.UpdatedAt.Format(time.RFC3339),
	}
	if m.LastUsedAt != nil {
		s := m.LastUsedAt.Format(time.RFC3339)
		dto.LastUsedAt = &s
	}
	return dto
}

// NewPhoneNumberDTOs maps a list of phone number models
func NewPhoneNumberDTOs(items []*models.PhoneNumber) []PhoneNumberDTO {
	out := make([]PhoneNumberDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewPhoneNumberDTO(m))
	}
	return out
}
