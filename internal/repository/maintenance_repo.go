package repository

import (
	"errors"

	"khakiestate/internal/models"

	"gorm.io/gorm"
)

// ErrVersionConflict signals a lost optimistic-lock race: another writer
// updated the row between our read and our write.
var ErrVersionConflict = errors.New("concurrent modification detected")

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(m *models.MaintenanceRequest) error {
	return r.db.Create(m).Error
}

func (r *MaintenanceRepository) GetByID(id uint) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := r.db.Preload("Category").Preload("AssignedTo").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepository) GetByTicketNumber(number string) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := r.db.Where("ticket_number = ?", number).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveVersioned writes the full record guarded by its version column.
// The in-memory version is bumped on success and left untouched on conflict.
func (r *MaintenanceRepository) SaveVersioned(m *models.MaintenanceRequest) error {
	prev := m.Version
	m.Version = prev + 1
	res := r.db.Model(&models.MaintenanceRequest{}).
		Where("id = ? AND version = ?", m.ID, prev).
		Select("*").Omit("created_at").Updates(m)
	if res.Error != nil {
		m.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		m.Version = prev
		return ErrVersionConflict
	}
	return nil
}

func (r *MaintenanceRepository) ListByResident(residentID uint, limit, offset int) ([]models.MaintenanceRequest, error) {
	var list []models.MaintenanceRequest
	err := r.db.Preload("Category").Where("resident_id = ?", residentID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *MaintenanceRepository) ListAll(status string, limit, offset int) ([]models.MaintenanceRequest, error) {
	var list []models.MaintenanceRequest
	q := r.db.Preload("Category")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *MaintenanceRepository) ListByAssignee(staffUserID uint, limit, offset int) ([]models.MaintenanceRequest, error) {
	var list []models.MaintenanceRequest
	err := r.db.Preload("Category").Where("assigned_to_id = ?", staffUserID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *MaintenanceRepository) AddUpdate(u *models.MaintenanceUpdate) error {
	return r.db.Create(u).Error
}

func (r *MaintenanceRepository) ListUpdates(requestID uint) ([]models.MaintenanceUpdate, error) {
	var list []models.MaintenanceUpdate
	err := r.db.Where("request_id = ?", requestID).Order("created_at").Find(&list).Error
	return list, err
}

type MaintenanceCategoryRepository struct {
	db *gorm.DB
}

func NewMaintenanceCategoryRepository(db *gorm.DB) *MaintenanceCategoryRepository {
	return &MaintenanceCategoryRepository{db: db}
}

func (r *MaintenanceCategoryRepository) Create(c *models.MaintenanceCategory) error {
	return r.db.Create(c).Error
}

func (r *MaintenanceCategoryRepository) GetByID(id uint) (*models.MaintenanceCategory, error) {
	var c models.MaintenanceCategory
	err := r.db.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MaintenanceCategoryRepository) List() ([]models.MaintenanceCategory, error) {
	var list []models.MaintenanceCategory
	err := r.db.Order("name").Find(&list).Error
	return list, err
}
