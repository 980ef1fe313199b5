package models

import (
	"time"

	"gorm.io/gorm"
)

type MarketplaceItem struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	ItemType     string         `gorm:"size:15;not null;index" json:"item_type"`
	Price        *float64       `json:"price"`
	SellerID     uint           `gorm:"not null;index" json:"seller_id"`
	ContactPhone string         `gorm:"size:15" json:"contact_phone"`
	Status       string         `gorm:"size:10;default:active;index" json:"status"`
	ExpiresAt    time.Time      `gorm:"not null" json:"expires_at"`
	Image1URL    string         `gorm:"size:512" json:"image1_url"`
	Image2URL    string         `gorm:"size:512" json:"image2_url"`
	Image3URL    string         `gorm:"size:512" json:"image3_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Seller User `gorm:"foreignKey:SellerID" json:"-"`
}

func (MarketplaceItem) TableName() string {
	return "marketplace_items"
}
