package repository

import (
	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Preload("CommonArea").First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveVersioned writes the full record guarded by its version column.
func (r *BookingRepository) SaveVersioned(b *models.Booking) error {
	prev := b.Version
	b.Version = prev + 1
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND version = ?", b.ID, prev).
		Select("*").Omit("created_at").Updates(b)
	if res.Error != nil {
		b.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		b.Version = prev
		return ErrVersionConflict
	}
	return nil
}

func (r *BookingRepository) ListByResident(residentID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Preload("CommonArea").Where("resident_id = ?", residentID).
		Order("booking_date DESC, start_time DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *BookingRepository) ListPendingForApprover(approverID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Preload("CommonArea").
		Where("designated_approver_id = ? AND status = ?", approverID, "pending").
		Order("booking_date").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListOverlapping returns non-terminal bookings of the area on the date
// whose time range intersects [start, end).
func (r *BookingRepository) ListOverlapping(areaID uint, date, start, end string) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("common_area_id = ? AND DATE(booking_date) = ? AND status IN ?",
		areaID, date, []string{"pending", "approved", "confirmed"}).
		Where("start_time < ? AND end_time > ?", end, start).
		Find(&list).Error
	return list, err
}

type CommonAreaRepository struct {
	db *gorm.DB
}

func NewCommonAreaRepository(db *gorm.DB) *CommonAreaRepository {
	return &CommonAreaRepository{db: db}
}

func (r *CommonAreaRepository) Create(a *models.CommonArea) error {
	return r.db.Create(a).Error
}

func (r *CommonAreaRepository) GetByID(id uint) (*models.CommonArea, error) {
	var a models.CommonArea
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CommonAreaRepository) ListActive() ([]models.CommonArea, error) {
	var list []models.CommonArea
	err := r.db.Where("is_active = ?", true).Order("name").Find(&list).Error
	return list, err
}

func (r *CommonAreaRepository) Update(a *models.CommonArea) error {
	return r.db.Save(a).Error
}
