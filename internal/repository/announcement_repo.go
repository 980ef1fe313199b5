package repository

import (
	"time"

	"khakiestate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(a *models.Announcement) error {
	return r.db.Create(a).Error
}

func (r *AnnouncementRepository) GetByID(id uint) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.Preload("Category").Preload("Comments").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List orders pinned and urgent announcements first, newest after.
func (r *AnnouncementRepository) List(limit, offset int) ([]models.Announcement, error) {
	var list []models.Announcement
	err := r.db.Preload("Category").
		Order("is_pinned DESC, is_urgent DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *AnnouncementRepository) Update(a *models.Announcement) error {
	return r.db.Save(a).Error
}

// MarkRead records that the user read the announcement; repeat calls keep
// the original read time.
func (r *AnnouncementRepository) MarkRead(announcementID, userID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AnnouncementRead{
		AnnouncementID: announcementID,
		UserID:         userID,
		ReadAt:         time.Now(),
	}).Error
}

func (r *AnnouncementRepository) AddComment(c *models.Comment) error {
	return r.db.Create(c).Error
}

func (r *AnnouncementRepository) ListComments(announcementID uint) ([]models.Comment, error) {
	var list []models.Comment
	err := r.db.Where("announcement_id = ?", announcementID).Order("created_at").Find(&list).Error
	return list, err
}

type AnnouncementCategoryRepository struct {
	db *gorm.DB
}

func NewAnnouncementCategoryRepository(db *gorm.DB) *AnnouncementCategoryRepository {
	return &AnnouncementCategoryRepository{db: db}
}

func (r *AnnouncementCategoryRepository) GetByID(id uint) (*models.AnnouncementCategory, error) {
	var c models.AnnouncementCategory
	err := r.db.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AnnouncementCategoryRepository) List() ([]models.AnnouncementCategory, error) {
	var list []models.AnnouncementCategory
	err := r.db.Order("name").Find(&list).Error
	return list, err
}
