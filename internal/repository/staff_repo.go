package repository

import (
	"khakiestate/internal/domain"
	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(s *models.Staff) error {
	return r.db.Create(s).Error
}

func (r *StaffRepository) GetByUserID(userID uint) (*models.Staff, error) {
	var s models.Staff
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) Update(s *models.Staff) error {
	return r.db.Save(s).Error
}

// ListMaintenanceStaff returns active staff who can handle maintenance
// work, either via the all-access flag or a maintenance-handling role.
func (r *StaffRepository) ListMaintenanceStaff() ([]models.Staff, error) {
	var list []models.Staff
	err := r.db.Joins("JOIN users ON users.id = staff.user_id").
		Where("staff.is_active = ? AND users.is_active = ? AND users.deleted_at IS NULL", true, true).
		Where("staff.can_access_all_maintenance = ? OR staff.staff_role IN ?", true,
			[]string{domain.RoleFacilityManager, domain.RoleMaintenanceSupervisor, domain.RoleElectrician, domain.RolePlumber}).
		Find(&list).Error
	return list, err
}
