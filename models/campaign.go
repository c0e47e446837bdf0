package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MessageStep is one entry of a campaign's ordered message sequence
// DelayMinutes and Condition are carried for future multi-step progression;
// the dispatcher currently executes only the first step of the sequence and
// treats Condition as always true
type MessageStep struct {
	TemplateID   uint    `json:"template_id"`
	DelayMinutes int     `json:"delay_minutes"`
	Condition    *string `json:"condition,omitempty"`
}

// MessageSequence is the ordered list of steps stored as JSONB
type MessageSequence []MessageStep

// Value implements the driver.Valuer interface for MessageSequence
func (s MessageSequence) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for MessageSequence
func (s *MessageSequence) Scan(value any) error {
	if value == nil {
		*s = MessageSequence{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MessageSequence", value)
	}

	return json.Unmarshal(bytes, s)
}

// Campaign represents an outbound messaging campaign
// It references a personality, a message sequence of templates, a set of
// sending numbers and the contact tags it targets. Created inactive; an
// explicit activation marks it active and triggers an immediate dispatch run.
// Active campaigns are re-dispatched on every scheduler tick until they are
// explicitly deactivated.
type Campaign struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	PersonalityID   uint            `gorm:"not null;index:idx_campaigns_personality_id" json:"personality_id"`
	MessageSequence MessageSequence `gorm:"type:jsonb;not null;default:'[]'" json:"message_sequence"`
	TargetGroups    pq.StringArray  `gorm:"type:text[]" json:"target_groups"`
	PhoneNumberIDs  pq.Int64Array   `gorm:"type:bigint[]" json:"phone_number_ids"`

	DailyLimit int   `gorm:"not null;default:50" json:"daily_limit"`
	Active     *bool `gorm:"default:false;index:idx_campaigns_active" json:"active"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Personality *Personality `gorm:"foreignKey:PersonalityID;references:ID" json:"personality,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.MessageSequence == nil {
		c.MessageSequence = MessageSequence{}
	}
	if c.DailyLimit == 0 {
		c.DailyLimit = utils.DefaultCampaignDailyLimit
	}
	if c.Active == nil {
		c.Active = utils.ToPtr(false)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsActive reports whether the campaign is eligible for dispatch
func (c *Campaign) IsActive() bool {
	return utils.IsTrue(c.Active)
}

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	PersonalityID *uint
	Active        *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
