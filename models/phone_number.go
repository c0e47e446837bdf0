// Package models contains domain entities and business models for the messaging platform
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhoneStatus represents the live connection state of a sending number
type PhoneStatus string

const (
	PhoneStatusOnline  PhoneStatus = "online"
	PhoneStatusOffline PhoneStatus = "offline"
)

// String returns the string representation of the status
func (s PhoneStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PhoneStatus) Valid() bool {
	switch s {
	case PhoneStatusOnline, PhoneStatusOffline:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PhoneStatus
func (s *PhoneStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PhoneStatus(v)
	case []byte:
		*s = PhoneStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PhoneStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PhoneStatus
func (s PhoneStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PhoneStatus: %s", s)
	}
	return string(s), nil
}

// PhoneNumber represents a registered sending number (WhatsApp identity)
// Unique by Number value
// SentToday resets to 0 at the day boundary by an external job; SentToday < DailyLimit
// is the eligibility gate for campaign rotation, not an enforced ceiling
type PhoneNumber struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_phone_numbers_uuid" json:"uuid"`

	Number string      `gorm:"size:20;not null;uniqueIndex:uk_phone_numbers_number" json:"number"`
	Name   string      `gorm:"size:255;not null" json:"name"`
	Status PhoneStatus `gorm:"type:phone_status;not null;default:'offline';index:idx_phone_numbers_status" json:"status"`

	SentToday  int        `gorm:"not null;default:0" json:"sent_today"`
	DailyLimit int        `gorm:"not null;default:100" json:"daily_limit"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// BeforeCreate is called before creating a new record
func (p *PhoneNumber) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PhoneStatusOffline
	}
	if p.DailyLimit == 0 {
		p.DailyLimit = utils.DefaultPhoneDailyLimit
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsOnline reports whether the number is connected to the channel
func (p *PhoneNumber) IsOnline() bool {
	return p.Status == PhoneStatusOnline
}

// HasCapacity reports whether the number may still send today
func (p *PhoneNumber) HasCapacity() bool {
	return p.SentToday < p.DailyLimit
}

// PhoneNumberFilter represents filter criteria for phone number queries
type PhoneNumberFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Number        *string
	Name          *string
	Status        *PhoneStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
