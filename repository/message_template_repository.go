// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// MessageTemplateRepositoryImpl implements MessageTemplateRepository interface
type MessageTemplateRepositoryImpl struct {
	*BaseRepository[models.MessageTemplate, models.MessageTemplateFilter]
}

// NewMessageTemplateRepository creates a new message template repository
func NewMessageTemplateRepository(db *gorm.DB) MessageTemplateRepository {
	return &MessageTemplateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MessageTemplate, models.MessageTemplateFilter](db),
	}
}

// ByUUID retrieves a template by UUID (string)
func (r *MessageTemplateRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.MessageTemplate, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.MessageTemplateFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *MessageTemplateRepositoryImpl) applyFilter(query *gorm.DB, filter models.MessageTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves templates based on filter criteria
func (r *MessageTemplateRepositoryImpl) ByFilter(ctx context.Context, filter models.MessageTemplateFilter, orderBy string, limit, offset int) ([]*models.MessageTemplate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.MessageTemplate{})

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

	var templates []*models.MessageTemplate
	err := query.Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find message templates by filter: %w", err)
	}
	return templates, nil
}
