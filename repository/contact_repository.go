// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ContactRepositoryImpl implements ContactRepository interface
type ContactRepositoryImpl struct {
	*BaseRepository[models.Contact, models.ContactFilter]
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &ContactRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contact, models.ContactFilter](db),
	}
}

// ByUUID retrieves a contact by UUID (string)
func (r *ContactRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Contact, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.ContactFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByPhone retrieves a contact by its unique phone value
func (r *ContactRepositoryImpl) ByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	filter := models.ContactFilter{Phone: &phone}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// Eligible returns contacts whose tags overlap anyTag, excluding do-not-disturb
// contacts and anyone contacted after cutoff; never-contacted contacts pass.
// Ordering is stable by id so repeated runs walk the same sequence.
func (r *ContactRepositoryImpl) Eligible(ctx context.Context, anyTag []string, cutoff time.Time, limit int) ([]*models.Contact, error) {
	if len(anyTag) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	query := db.Model(&models.Contact{}).
		Where("tags && ?", pq.StringArray(anyTag)).
		Where("do_not_disturb = ?", false).
		Where("last_contact_at IS NULL OR last_contact_at <= ?", cutoff).
		Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var contacts []*models.Contact
	err := query.Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible contacts: %w", err)
	}
	return contacts, nil
}

// AppendEntries inserts conversation history entries
func (r *ContactRepositoryImpl) AppendEntries(ctx context.Context, entries ...*models.ConversationEntry) error {
	if len(entries) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(entries).Error
	if err != nil {
		return fmt.Errorf("failed to append conversation entries: %w", err)
	}
	return nil
}

// RecentEntries returns the last n history entries in chronological order
func (r *ContactRepositoryImpl) RecentEntries(ctx context.Context, contactID uint, n int) ([]*models.ConversationEntry, error) {
	db := r.getDB(ctx)

	var entries []*models.ConversationEntry
	err := db.Where("contact_id = ?", contactID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent entries for contact %d: %w", contactID, err)
	}

	// Reverse into chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// TouchLastContact updates last_contact_at for a contact
func (r *ContactRepositoryImpl) TouchLastContact(ctx context.Context, id uint, at time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Contact{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_contact_at": at,
			"updated_at":      at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to touch last_contact_at for contact %d: %w", id, err)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ContactRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContactFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Phone != nil {
		query = query.Where("phone = ?", *filter.Phone)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if len(filter.AnyTag) > 0 {
		query = query.Where("tags && ?", pq.StringArray(filter.AnyTag))
	}
	if filter.DoNotDisturb != nil {
		query = query.Where("do_not_disturb = ?", *filter.DoNotDisturb)
	}
	if filter.LastContactBefore != nil {
		query = query.Where("last_contact_at <= ?", *filter.LastContactBefore)
	}
	if filter.NeverContacted != nil && *filter.NeverContacted {
		query = query.Where("last_contact_at IS NULL")
	}
	if filter.MinEngagementScore != nil {
		query = query.Where("engagement_score >= ?", *filter.MinEngagementScore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves contacts based on filter criteria
func (r *ContactRepositoryImpl) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Contact{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var contacts []*models.Contact
	err := query.Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts by filter: %w", err)
	}
	return contacts, nil
}
