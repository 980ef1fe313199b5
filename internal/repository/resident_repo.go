package repository

import (
	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type ResidentRepository struct {
	db *gorm.DB
}

func NewResidentRepository(db *gorm.DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

func (r *ResidentRepository) Create(res *models.Resident) error {
	return r.db.Create(res).Error
}

func (r *ResidentRepository) GetByUserID(userID uint) (*models.Resident, error) {
	var res models.Resident
	err := r.db.Where("user_id = ?", userID).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResidentRepository) Update(res *models.Resident) error {
	return r.db.Save(res).Error
}

// ListActive returns residents whose user account is active.
func (r *ResidentRepository) ListActive() ([]models.Resident, error) {
	var list []models.Resident
	err := r.db.Joins("JOIN users ON users.id = residents.user_id").
		Where("users.is_active = ? AND users.deleted_at IS NULL", true).
		Find(&list).Error
	return list, err
}

// ListCommitteeMembers returns active committee-member residents.
func (r *ResidentRepository) ListCommitteeMembers() ([]models.Resident, error) {
	var list []models.Resident
	err := r.db.Joins("JOIN users ON users.id = residents.user_id").
		Where("residents.is_committee_member = ? AND users.is_active = ? AND users.deleted_at IS NULL", true, true).
		Find(&list).Error
	return list, err
}
