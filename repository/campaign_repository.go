// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByID retrieves a campaign by its ID with the personality resolved
func (r *CampaignRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaign models.Campaign
	err := db.Preload("Personality").Last(&campaign, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find campaign by ID %d: %w", id, err)
	}

	return &campaign, nil
}

// ByUUID retrieves a campaign by UUID (string)
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListActive returns every campaign with active = true, oldest first
func (r *CampaignRepositoryImpl) ListActive(ctx context.Context) ([]*models.Campaign, error) {
	active := true
	return r.ByFilter(ctx, models.CampaignFilter{Active: &active}, "id ASC", 0, 0)
}

// SetActive flips the active flag of a campaign
func (r *CampaignRepositoryImpl) SetActive(ctx context.Context, id uint, active bool) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     active,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set active=%t for campaign %d: %w", active, id, err)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CampaignRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.PersonalityID != nil {
		query = query.Where("personality_id = ?", *filter.PersonalityID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Campaign{}).Preload("Personality")

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

	var campaigns []*models.Campaign
	err := query.Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find campaigns by filter: %w", err)
	}
	return campaigns, nil
}
