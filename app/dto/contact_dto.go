package dto

import (
	"time"

	"github.com/amirphl/Kitsune/models"
)

// CreateContactRequest represents the payload to create a new contact
type CreateContactRequest struct {
	Phone        string            `json:"phone" validate:"required,min=3,max=50"`
	Name         *string           `json:"name,omitempty" validate:"omitempty,max=255"`
	Tags         []string          `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	DoNotDisturb *bool             `json:"do_not_disturb,omitempty"`
	Preferences  map[string]string `json:"preferences,omitempty"`
}

// ContactDTO represents a contact for responses
type ContactDTO struct {
	ID              uint              `json:"id"`
	UUID            string            `json:"uuid"`
	Phone           string            `json:"phone"`
	Name            *string           `json:"name,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	LastContactAt   *string           `json:"last_contact_at,omitempty"`
	EngagementScore int               `json:"engagement_score"`
	Preferences     map[string]string `json:"preferences,omitempty"`
	DoNotDisturb    bool              `json:"do_not_disturb"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       *string           `json:"updated_at,omitempty"`
}

// ConversationEntryDTO represents one conversation history entry
type ConversationEntryDTO struct {
	ID        uint   `json:"id"`
	Message   string `json:"message"`
	Direction string `json:"direction"`
	CreatedAt string `json:"created_at"`
}

// NewContactDTO maps a contact model to its response shape
func NewContactDTO(m *models.Contact) ContactDTO {
	dto := ContactDTO{
		ID:              m.ID,
		UUID:            m.UUID.String(),
		Phone:           m.Phone,
		Name:            m.Name,
		Tags:            m.Tags,
		EngagementScore: m.EngagementScore,
		Preferences:     m.Preferences,
		DoNotDisturb:    m.DoNotDisturb != nil && *m.DoNotDisturb,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
	if m.UpdatedAt != nil {
		s := m.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	if m.LastContactAt != nil {
		s := m.LastContactAt.Format(time.RFC3339)
		dto.LastContactAt = &s
	}
	return dto
}

// NewContactDTOs maps a list of contact models
func NewContactDTOs(items []*models.Contact) []ContactDTO {
	out := make([]ContactDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewContactDTO(m))
	}
	return out
}

// NewConversationEntryDTOs maps conversation entries to their response shape
func NewConversationEntryDTOs(items []*models.ConversationEntry) []ConversationEntryDTO {
	out := make([]ConversationEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, ConversationEntryDTO{
			ID:        e.ID,
			Message:   e.Message,
			Direction: string(e.Direction),
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
