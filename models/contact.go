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

// Direction marks whether a conversation entry was sent by us or the contact
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// String returns the string representation of the direction
func (d Direction) String() string {
	return string(d)
}

// Valid checks if the direction is valid
func (d Direction) Valid() bool {
	switch d {
	case DirectionOutbound, DirectionInbound:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Direction
func (d *Direction) Scan(value any) error {
	if value == nil {
		*d = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*d = Direction(v)
	case []byte:
		*d = Direction(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Direction", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Direction
func (d Direction) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid Direction: %s", d)
	}
	return string(d), nil
}

// PreferenceMap stores free-form contact preferences as JSONB
type PreferenceMap map[string]string

// Value implements the driver.Valuer interface for PreferenceMap
func (m PreferenceMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(PreferenceMap{})
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for PreferenceMap
func (m *PreferenceMap) Scan(value any) error {
	if value == nil {
		*m = PreferenceMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PreferenceMap", value)
	}

	return json.Unmarshal(bytes, m)
}

// ConversationEntry is one message of a contact's conversation history
// Entries are append-only and immutable once written; chronological order
// equals insertion order (created_at asc, id asc as tiebreaker)
type ConversationEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContactID uint      `gorm:"not null;index:idx_conversation_entries_contact_id" json:"contact_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Direction Direction `gorm:"type:conversation_direction;not null" json:"direction"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_conversation_entries_created_at" json:"created_at"`
}

func (ConversationEntry) TableName() string {
	return "conversation_entries"
}

// BeforeCreate is called before creating a new record
func (e *ConversationEntry) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// Contact represents a person reachable over the messaging channel
// Unique by Phone; created on first inbound message when absent and never
// deleted by the dispatch or conversation flows
type Contact struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_contacts_uuid" json:"uuid"`

	Phone string  `gorm:"size:20;not null;uniqueIndex:uk_contacts_phone" json:"phone"`
	Name  *string `gorm:"size:255" json:"name,omitempty"`

	Tags          pq.StringArray `gorm:"type:text[];index:idx_contacts_tags,type:gin" json:"tags,omitempty"`
	LastContactAt *time.Time     `gorm:"index:idx_contacts_last_contact_at" json:"last_contact_at,omitempty"`

	EngagementScore int           `gorm:"not null;default:0" json:"engagement_score"`
	Preferences     PreferenceMap `gorm:"type:jsonb;not null;default:'{}'" json:"preferences,omitempty"`
	DoNotDisturb    *bool         `gorm:"default:false;index:idx_contacts_do_not_disturb" json:"do_not_disturb"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	History []ConversationEntry `gorm:"foreignKey:ContactID;references:ID" json:"history,omitempty"`
}

func (Contact) TableName() string {
	return "contacts"
}

// BeforeCreate is called before creating a new record
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Preferences == nil {
		c.Preferences = PreferenceMap{}
	}
	if c.DoNotDisturb == nil {
		c.DoNotDisturb = utils.ToPtr(false)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Contact) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// DisplayName returns the contact's name or an empty string when unknown
func (c *Contact) DisplayName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}

// ContactFilter represents filter criteria for contact queries
type ContactFilter struct {
	ID                 *uint
	UUID               *uuid.UUID
	Phone              *string
	Name               *string
	AnyTag             []string
	DoNotDisturb       *bool
	LastContactBefore  *time.Time
	NeverContacted     *bool
	CreatedAfter       *time.Time
	CreatedBefore      *time.Time
	MinEngagementScore *int
}
