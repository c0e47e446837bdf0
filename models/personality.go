package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Tone represents the conversational tone of a personality
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
)

// String returns the string representation of the tone
func (t Tone) String() string {
	return string(t)
}

// Valid checks if the tone is valid
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneCasual, ToneFriendly, ToneProfessional:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Tone
func (t *Tone) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = Tone(v)
	case []byte:
		*t = Tone(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Tone", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Tone
func (t Tone) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid Tone: %s", t)
	}
	return string(t), nil
}

// ResponseSpeed controls human-like pacing between consecutive sends
type ResponseSpeed string

const (
	ResponseSpeedFast     ResponseSpeed = "fast"
	ResponseSpeedModerate ResponseSpeed = "moderate"
	ResponseSpeedSlow     ResponseSpeed = "slow"
)

// String returns the string representation of the speed
func (s ResponseSpeed) String() string {
	return string(s)
}

// Valid checks if the speed is valid
func (s ResponseSpeed) Valid() bool {
	switch s {
	case ResponseSpeedFast, ResponseSpeedModerate, ResponseSpeedSlow:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ResponseSpeed
func (s *ResponseSpeed) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ResponseSpeed(v)
	case []byte:
		*s = ResponseSpeed(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ResponseSpeed", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ResponseSpeed
func (s ResponseSpeed) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ResponseSpeed: %s", s)
	}
	return string(s), nil
}

// Personality represents an assistant persona applied to outbound messaging
// Read-only input to template rendering and pacing during a dispatch run
type Personality struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_personalities_uuid" json:"uuid"`

	Name          string        `gorm:"size:255;not null" json:"name"`
	Tone          Tone          `gorm:"type:personality_tone;not null;default:'professional'" json:"tone"`
	ResponseSpeed ResponseSpeed `gorm:"type:personality_response_speed;not null;default:'moderate'" json:"response_speed"`

	Vocabulary    pq.StringArray `gorm:"type:text[]" json:"vocabulary,omitempty"`
	CommonPhrases pq.StringArray `gorm:"type:text[]" json:"common_phrases,omitempty"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Personality) TableName() string {
	return "personalities"
}

// BeforeCreate is called before creating a new record
func (p *Personality) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Tone == "" {
		p.Tone = ToneProfessional
	}
	if p.ResponseSpeed == "" {
		p.ResponseSpeed = ResponseSpeedModerate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PersonalityFilter represents filter criteria for personality queries
type PersonalityFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	Tone          *Tone
	ResponseSpeed *ResponseSpeed
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
