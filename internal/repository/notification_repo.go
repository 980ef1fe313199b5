package repository

import (
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Preload("Recipient").Preload("Type").First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetForRecipient loads a notification only if it belongs to the user.
// A cross-user id yields gorm.ErrRecordNotFound, which handlers surface
// as 404 so notification ids do not leak existence.
func (r *NotificationRepository) GetForRecipient(id, userID uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Where("id = ? AND recipient_id = ?", id, userID).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(userID uint, status string, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.Where("recipient_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND status <> ?", userID, domain.NotificationRead).
		Count(&n).Error
	return n, err
}

// MarkRead is idempotent: read_at is set only on the first call.
func (r *NotificationRepository) MarkRead(id, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND status <> ?", id, userID, domain.NotificationRead).
		Updates(map[string]interface{}{
			"status":  domain.NotificationRead,
			"read_at": time.Now(),
		}).Error
}

// UpdateDelivery records the delivery worker's outcome.
func (r *NotificationRepository) UpdateDelivery(n *models.Notification) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", n.ID).
		Updates(map[string]interface{}{
			"status":     n.Status,
			"email_sent": n.EmailSent,
			"sms_sent":   n.SMSSent,
			"sent_at":    n.SentAt,
		}).Error
}

type NotificationTypeRepository struct {
	db *gorm.DB
}

func NewNotificationTypeRepository(db *gorm.DB) *NotificationTypeRepository {
	return &NotificationTypeRepository{db: db}
}

func (r *NotificationTypeRepository) GetByName(name string) (*models.NotificationType, error) {
	var t models.NotificationType
	err := r.db.Where("name = ?", name).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *NotificationTypeRepository) List() ([]models.NotificationType, error) {
	var list []models.NotificationType
	err := r.db.Order("name").Find(&list).Error
	return list, err
}
