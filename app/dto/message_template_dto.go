package dto

import (
	"time"

	"github.com/amirphl/Kitsune/models"
)

// CreateMessageTemplateRequest represents the payload to create a new message template
type CreateMessageTemplateRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Category  *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Content   string   `json:"content" validate:"required"`
	Variables []string `json:"variables,omitempty" validate:"omitempty,dive,min=1"`
}

// MessageTemplateDTO represents a message template for responses
type MessageTemplateDTO struct {
	ID        uint     `json:"id"`
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	Category  *string  `json:"category,omitempty"`
	Content   string   `json:"content"`
	Variables []string `json:"variables,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// NewMessageTemplateDTO maps a message template model to its response shape
func NewMessageTemplateDTO(m *models.MessageTemplate) MessageTemplateDTO {
	return MessageTemplateDTO{
		ID:        m.ID,
		UUID:      m.UUID.String(),
		Name:      m.Name,
		Category:  m.Category,
		Content:   m.Content,
		Variables: m.Variables,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// NewMessageTemplateDTOs maps a list of message template models
func NewMessageTemplateDTOs(items []*models.MessageTemplate) []MessageTemplateDTO {
	out := make([]MessageTemplateDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewMessageTemplateDTO(m))
	}
	return out
}
