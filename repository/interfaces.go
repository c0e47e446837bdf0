// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Kitsune/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
}

// PhoneNumberRepository defines operations for sending numbers
type PhoneNumberRepository interface {
	Repository[models.PhoneNumber, models.PhoneNumberFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PhoneNumber, error)
	ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error)
	ByIDs(ctx context.Context, ids []uint) ([]*models.PhoneNumber, error)
	// RecordSend atomically increments sent_today and stamps last_used_at.
	RecordSend(ctx context.Context, id uint, usedAt time.Time) error
	// IncrementSentToday atomically adds one to sent_today without touching last_used_at.
	IncrementSentToday(ctx context.Context, id uint) error
}

// PersonalityRepository defines operations for assistant personas
type PersonalityRepository interface {
	Repository[models.Personality, models.PersonalityFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Personality, error)
}

// MessageTemplateRepository defines operations for message templates
type MessageTemplateRepository interface {
	Repository[models.MessageTemplate, models.MessageTemplateFilter]
	ByUUID(ctx context.Context, uuid string) (*models.MessageTemplate, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	// ListActive returns every campaign with active = true, oldest first.
	ListActive(ctx context.Context) ([]*models.Campaign, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

// ContactRepository defines operations for contacts and their conversation history
type ContactRepository interface {
	Repository[models.Contact, models.ContactFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Contact, error)
	ByPhone(ctx context.Context, phone string) (*models.Contact, error)
	// Eligible returns contacts whose tags overlap anyTag, excluding do-not-disturb
	// contacts and anyone contacted after cutoff; never-contacted contacts pass.
	Eligible(ctx context.Context, anyTag []string, cutoff time.Time, limit int) ([]*models.Contact, error)
	AppendEntries(ctx context.Context, entries ...*models.ConversationEntry) error
	// RecentEntries returns the last n history entries in chronological order.
	RecentEntries(ctx context.Context, contactID uint, n int) ([]*models.ConversationEntry, error)
	TouchLastContact(ctx context.Context, id uint, at time.Time) error
}
