// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// PhoneNumberRepositoryImpl implements PhoneNumberRepository interface
type PhoneNumberRepositoryImpl struct {
	*BaseRepository[models.PhoneNumber, models.PhoneNumberFilter]
}

// NewPhoneNumberRepository creates a new phone number repository
func NewPhoneNumberRepository(db *gorm.DB) PhoneNumberRepository {
	return &PhoneNumberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PhoneNumber, models.PhoneNumberFilter](db),
	}
}

// ByUUID retrieves a phone number by UUID (string)
func (r *PhoneNumberRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PhoneNumber, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PhoneNumberFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByNumber retrieves a phone number by its unique number value
func (r *PhoneNumberRepositoryImpl) ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	filter := models.PhoneNumberFilter{Number: &number}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByIDs retrieves phone numbers matching the given IDs
func (r *PhoneNumberRepositoryImpl) ByIDs(ctx context.Context, ids []uint) ([]*models.PhoneNumber, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var numbers []*models.PhoneNumber
	err := db.Where("id IN ?", ids).Order("id ASC").Find(&numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find phone numbers by ids: %w", err)
	}
	return numbers, nil
}

// RecordSend atomically increments sent_today and stamps last_used_at
func (r *PhoneNumberRepositoryImpl) RecordSend(ctx context.Context, id uint, usedAt time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.PhoneNumber{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sent_today":   gorm.Expr("sent_today + 1"),
			"last_used_at": usedAt,
			"updated_at":   usedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record send for phone number %d: %w", id, err)
	}
	return nil
}

// IncrementSentToday atomically adds one to sent_today
func (r *PhoneNumberRepositoryImpl) IncrementSentToday(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Model(&models.PhoneNumber{}).
		Where("id = ?", id).
		UpdateColumn("sent_today", gorm.Expr("sent_today + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment sent_today for phone number %d: %w", id, err)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PhoneNumberRepositoryImpl) applyFilter(query *gorm.DB, filter models.PhoneNumberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves phone numbers based on filter criteria
func (r *PhoneNumberRepositoryImpl) ByFilter(ctx context.Context, filter models.PhoneNumberFilter, orderBy string, limit, offset int) ([]*models.PhoneNumber, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumber{})

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

	var numbers []*models.PhoneNumber
	err := query.Find(&numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find phone numbers by filter: %w", err)
	}
	return numbers, nil
}
