package models

import (
	"time"

	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MessageTemplate represents a reusable outbound message body
// Content carries named placeholders such as {name}; Variables declares which
// placeholders the template expects to be substituted
type MessageTemplate struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_message_templates_uuid" json:"uuid"`

	Name     string  `gorm:"size:255;not null" json:"name"`
	Category *string `gorm:"size:100" json:"category,omitempty"`
	Content  string  `gorm:"type:text;not null" json:"content"`

	Variables pq.StringArray `gorm:"type:text[]" json:"variables,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}

// BeforeCreate is called before creating a new record
func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	return nil
}

// MessageTemplateFilter represents filter criteria for template queries
type MessageTemplateFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	Category      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
