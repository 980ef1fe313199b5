package models

import (
	"time"
)

// NotificationType is a named notification category. The full set is
// seeded at startup and validated against what the services emit;
// a lookup miss at runtime is a configuration error, never healed inline.
type NotificationType struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	TemplateName    string `gorm:"size:100" json:"template_name"`
	SMSTemplate     string `gorm:"type:text" json:"sms_template"`
	DefaultDelivery string `gorm:"size:10;default:email" json:"default_delivery"` // email | sms | both | in_app
	IsUrgent        bool   `gorm:"default:false" json:"is_urgent"`
}

func (NotificationType) TableName() string {
	return "notification_types"
}

// Notification is one delivery-attempt record for one recipient.
// Created by the dispatcher with status=sent; the delivery worker moves it
// to delivered or failed, and the recipient's read action to read.
type Notification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Reference   string `gorm:"uniqueIndex;size:26;not null" json:"reference"` // ULID
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	TypeID      uint   `gorm:"not null;index" json:"type_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Message     string `gorm:"type:text" json:"message"`
	Data        string `gorm:"type:text" json:"data"` // JSON payload
	Status      string `gorm:"size:10;default:sent;index" json:"status"`
	EmailSent   bool   `gorm:"default:false" json:"email_sent"`
	SMSSent     bool   `gorm:"default:false" json:"sms_sent"`

	RelatedKind string `gorm:"size:50" json:"related_kind"`
	RelatedID   *uint  `json:"related_id"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
	ReadAt    *time.Time `json:"read_at"`

	Recipient User             `gorm:"foreignKey:RecipientID" json:"-"`
	Type      NotificationType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
