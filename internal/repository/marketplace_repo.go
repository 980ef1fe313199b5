package repository

import (
	"time"

	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type MarketplaceRepository struct {
	db *gorm.DB
}

func NewMarketplaceRepository(db *gorm.DB) *MarketplaceRepository {
	return &MarketplaceRepository{db: db}
}

func (r *MarketplaceRepository) Create(item *models.MarketplaceItem) error {
	return r.db.Create(item).Error
}

func (r *MarketplaceRepository) GetByID(id uint) (*models.MarketplaceItem, error) {
	var item models.MarketplaceItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MarketplaceRepository) ListActive(itemType string, limit, offset int) ([]models.MarketplaceItem, error) {
	var list []models.MarketplaceItem
	q := r.db.Where("status = ?", "active")
	if itemType != "" {
		q = q.Where("item_type = ?", itemType)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *MarketplaceRepository) Update(item *models.MarketplaceItem) error {
	return r.db.Save(item).Error
}

// ExpireStale flips active listings past their expiry to expired.
func (r *MarketplaceRepository) ExpireStale(now time.Time) (int64, error) {
	res := r.db.Model(&models.MarketplaceItem{}).
		Where("status = ? AND expires_at < ?", "active", now).
		Update("status", "expired")
	return res.RowsAffected, res.Error
}
