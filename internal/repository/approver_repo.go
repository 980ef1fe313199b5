package repository

import (
	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type ApproverRepository struct {
	db *gorm.DB
}

func NewApproverRepository(db *gorm.DB) *ApproverRepository {
	return &ApproverRepository{db: db}
}

// Activate makes the given approver the single active assignment for the
// area. Any other active assignment for the area is deactivated in the
// same transaction, preserving the single-active-per-area invariant.
func (r *ApproverRepository) Activate(areaID, approverID uint, notes string) (*models.ApproverAssignment, error) {
	var out *models.ApproverAssignment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ApproverAssignment{}).
			Where("common_area_id = ? AND is_active = ?", areaID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		a := &models.ApproverAssignment{
			CommonAreaID: areaID,
			ApproverID:   approverID,
			IsActive:     true,
			Notes:        notes,
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// GetActiveForArea returns the single active assignment for the area, or
// gorm.ErrRecordNotFound when no approver is configured.
func (r *ApproverRepository) GetActiveForArea(areaID uint) (*models.ApproverAssignment, error) {
	var a models.ApproverAssignment
	err := r.db.Where("common_area_id = ? AND is_active = ?", areaID, true).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApproverRepository) ListByArea(areaID uint) ([]models.ApproverAssignment, error) {
	var list []models.ApproverAssignment
	err := r.db.Where("common_area_id = ?", areaID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ApproverRepository) List() ([]models.ApproverAssignment, error) {
	var list []models.ApproverAssignment
	err := r.db.Preload("CommonArea").Order("common_area_id, created_at DESC").Find(&list).Error
	return list, err
}
