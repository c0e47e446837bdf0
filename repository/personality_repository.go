// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// PersonalityRepositoryImpl implements PersonalityRepository interface
type PersonalityRepositoryImpl struct {
	*BaseRepository[models.Personality, models.PersonalityFilter]
}

// NewPersonalityRepository creates a new personality repository
func NewPersonalityRepository(db *gorm.DB) PersonalityRepository {
	return &PersonalityRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Personality, models.PersonalityFilter](db),
	}
}

// ByUUID retrieves a personality by UUID (string)
func (r *PersonalityRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Personality, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PersonalityFilter{UUID: &parsed}
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
func (r *PersonalityRepositoryImpl) applyFilter(query *gorm.DB, filter models.PersonalityFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Tone != nil {
		query = query.Where("tone = ?", *filter.Tone)
	}
	if filter.ResponseSpeed != nil {
		query = query.Where("response_speed = ?", *filter.ResponseSpeed)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves personalities based on filter criteria
func (r *PersonalityRepositoryImpl) ByFilter(ctx context.Context, filter models.PersonalityFilter, orderBy string, limit, offset int) ([]*models.Personality, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Personality{})

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

	var personalities []*models.Personality
	err := query.Find(&personalities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find personalities by filter: %w", err)
	}
	return personalities, nil
}
